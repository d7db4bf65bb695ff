// Package model defines the provider‑agnostic abstractions for text-completion
// backends used by the router.
//
// Core goals:
//   - A single stateless call shape: (role, prompt) in, text out
//   - Vendor adapters live in sub-packages (gemini, openai, anthropic)
//   - Model id resolution at startup (Resolve) with a stable fallback
//   - A deterministic MockModel for tests and examples
//
// No conversation memory is carried between calls; every Request supplies the
// full prompt and role context.
package model
