// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services for content generation. It abstracts the
// details of LLM API integration (Gemini), allowing the application to suggest
// tasks from a user's free-form context without coupling to specific external
// services.
package generation
