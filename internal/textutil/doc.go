// Package textutil derives filesystem-safe names from session names and media
// paths.
package textutil
