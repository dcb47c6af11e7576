// Package llm sends audio to an OpenRouter-compatible chat completion endpoint
// and returns the model's raw caption text.
//
// A single request carries a system prompt with the timing, layout, and output
// rules plus a user message holding a short text part and the base64 WAV as an
// input_audio part. Caption returns whatever text the model produced; parsing
// it into segments is the transcript package's job.
//
// # Credentials
//
// The API key is resolved per request through a CredentialSource. The default
// chain reads llm.api_key from config, then CAPTIONER_API_KEY, then
// OPENROUTER_API_KEY. A missing key fails before any network traffic with
// services.ErrMissingCredential.
//
// # Retry Behaviour
//
// One attempt by default. When llm.retry_attempts is raised the client retries
// HTTP 408/429/5xx, network timeouts, and empty replies with exponential
// backoff (base 1s, max 10s), honouring Retry-After. Context cancellation
// aborts immediately.
package llm
