// Package preflight provides readiness checks for the binaries, directories,
// and API credential captioner depends on.
//
// The "captioner doctor" command runs RunAll and renders each Result. The
// model API ping is opt-in because it spends a request against the caller's
// quota.
package preflight
