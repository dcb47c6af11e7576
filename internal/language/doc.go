// Package language normalizes user-supplied language identifiers and renders
// their English display names for caption prompts.
package language
