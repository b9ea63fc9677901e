// Package validate checks operator input before it is sent to the backend.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nebari-dev/mlperm/internal/cliclient"
)

// MaxTokenLifetime is the longest expiration an access token may be issued with.
const MaxTokenLifetime = 365 * 24 * time.Hour

// FieldError reports an invalid form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ParseLevel parses a permission level, case-insensitively.
func ParseLevel(s string) (cliclient.Level, error) {
	l := cliclient.Level(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range cliclient.Levels {
		if l == known {
			return l, nil
		}
	}
	return "", &FieldError{Field: "permission", Message: fmt.Sprintf("unknown level %q (want READ, EDIT, MANAGE or NO_PERMISSIONS)", s)}
}

// Pattern checks that regex compiles.
func Pattern(regex string) error {
	if strings.TrimSpace(regex) == "" {
		return &FieldError{Field: "regex", Message: "must not be empty"}
	}
	if _, err := regexp.Compile(regex); err != nil {
		return &FieldError{Field: "regex", Message: err.Error()}
	}
	return nil
}

// Priority checks a pattern priority.
func Priority(p int) error {
	if p < 0 {
		return &FieldError{Field: "priority", Message: "must be zero or positive"}
	}
	return nil
}

// TokenExpiration checks that exp lies after now and at most one year later.
func TokenExpiration(now, exp time.Time) error {
	if !exp.After(now) {
		return &FieldError{Field: "expiration", Message: "must be in the future"}
	}
	if exp.Sub(now) > MaxTokenLifetime {
		return &FieldError{Field: "expiration", Message: "must be within one year"}
	}
	return nil
}

// WebhookURL checks that raw is an absolute http(s) URL.
func WebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &FieldError{Field: "url", Message: fmt.Sprintf("%q is not an http(s) URL", raw)}
	}
	return nil
}
