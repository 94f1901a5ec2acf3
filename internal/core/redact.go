package core

import (
	"regexp"
	"strings"
)

// redactPatterns scrub credentials from error text before it is shown to a
// user or written to a log.
var redactPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	// user:password@ in connection strings
	{regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://[^:/@\s]+):[^@\s]+@`), "${1}:***@"},
	{regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*[^&\s]+`), "${1}=***"},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|x-api-key)\s*[=:]\s*[^&\s]+`), "${1}=***"},
	{regexp.MustCompile(`(?i)\b(token|secret|key)\s*[=:]\s*[^&\s]+`), "${1}=***"},
	{regexp.MustCompile(`(?i)\bbearer\s+[a-z0-9._~+/-]+=*`), "Bearer ***"},
}

// Redact removes sensitive substrings (passwords, tokens, API keys, DSN
// credentials) from s.
func Redact(s string) string {
	for _, p := range redactPatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}

// UserFacingMessage returns the text to show a user for err. Known errors
// map to their friendly message; anything else is passed through verbatim
// after redaction so store and transport failures stay diagnosable.
func UserFacingMessage(err error) string {
	if err == nil {
		return ""
	}
	if IsUserFacing(err) {
		return FormatUserError(err)
	}
	return strings.TrimSpace(Redact(err.Error()))
}
