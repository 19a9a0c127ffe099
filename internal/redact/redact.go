// Package redact scrubs credentials from strings before they are logged
// or embedded in error responses: API key secrets, JWTs, passwords and
// database connection strings all pass through error values at some point.
package redact

import "regexp"

// Redaction placeholders
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	JWTPlaceholder        = "[REDACTED_JWT]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
)

var (
	// Task board API keys ("ak_" + 64 hex chars, but match loosely so
	// truncated keys in error text are still caught).
	apiKeyRegex = regexp.MustCompile(`\bak_[0-9a-fA-F]{8,}\b`)

	// Standard three-part base64url-encoded JWT format.
	jwtRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Database connection strings with inline credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)

	// password=..., password: ... and friends.
	passwordRegex = regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]['"]?)[^'"&\s]{3,}`)

	// Generic secret assignments (api_key=..., token: ..., secret=...).
	secretRegex = regexp.MustCompile(`(?i)(api[_-]?key|token|secret)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Email addresses, PII in auth error messages.
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := apiKeyRegex.ReplaceAllString(input, KeyPlaceholder)
	result = jwtRegex.ReplaceAllString(result, JWTPlaceholder)
	result = dbConnRegex.ReplaceAllString(result, CredentialPlaceholder)
	result = passwordRegex.ReplaceAllString(result, CredentialPlaceholder)
	result = secretRegex.ReplaceAllString(result, KeyPlaceholder)
	result = emailRegex.ReplaceAllString(result, EmailPlaceholder)
	return result
}

// Error redacts sensitive information from an error's Error() output.
// Returns the empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
