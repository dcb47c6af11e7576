// Package config loads, normalizes, and validates captioner configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and normalizes the caption target language.
// The LLM API key is intentionally not required here; the model client
// resolves it from config or the environment when a request is made.
package config
