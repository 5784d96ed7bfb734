package middleware

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"bistro/internal/errors"
)

var (
	scriptProtocol = regexp.MustCompile(`(?i)javascript:`)
	eventHandler   = regexp.MustCompile(`(?i)on\w+\s*=`)

	sqlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|EXEC|EXECUTE)\b`),
		regexp.MustCompile(`(?i)\b(UNION|OR|AND)\b.*[=<>]`),
		regexp.MustCompile(`(--|/\*|\*/)`),
		regexp.MustCompile(`['";]`),
	}
)

// Secrets are passed through untouched and never pattern-checked.
var exemptKeys = map[string]bool{
	"password":     true,
	"newPassword":  true,
	"token":        true,
	"refreshToken": true,
	"idToken":      true,
}

// Sanitizer strips markup from JSON bodies and query strings and, when the
// SQL guard is enabled, rejects values that look like SQL fragments.
type Sanitizer struct {
	policy   *bluemonday.Policy
	sqlGuard bool
}

// NewSanitizer creates a sanitizer.
func NewSanitizer(sqlGuard bool) *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy(), sqlGuard: sqlGuard}
}

// Middleware rewrites the request in place before binding.
func (s *Sanitizer) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if raw := req.URL.RawQuery; raw != "" {
				query, err := url.ParseQuery(raw)
				if err == nil {
					for key, values := range query {
						for i, v := range values {
							values[i] = s.sanitizeValue(key, v)
							if err := s.guard(key, key, values[i]); err != nil {
								return err
							}
						}
					}
					req.URL.RawQuery = query.Encode()
				}
			}

			if req.Body != nil && strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				body, err := io.ReadAll(req.Body)
				if err != nil {
					return errors.Wrap(errors.ErrInvalidRequest, "unable to read request body")
				}
				cleaned, err := s.cleanJSON(body)
				if err != nil {
					return err
				}
				req.Body = io.NopCloser(bytes.NewReader(cleaned))
				req.ContentLength = int64(len(cleaned))
			}

			return next(c)
		}
	}
}

// cleanJSON sanitizes every string in a JSON document. Malformed bodies are
// returned unchanged so the binder can report them.
func (s *Sanitizer) cleanJSON(body []byte) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return body, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return body, nil
	}
	cleaned, err := s.walk("", "", doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cleaned)
}

func (s *Sanitizer) walk(path, key string, v any) (any, error) {
	switch val := v.(type) {
	case string:
		out := s.sanitizeValue(key, val)
		if err := s.guard(path, key, out); err != nil {
			return nil, err
		}
		return out, nil
	case map[string]any:
		for k, child := range val {
			cleaned, err := s.walk(joinPath(path, k), k, child)
			if err != nil {
				return nil, err
			}
			val[k] = cleaned
		}
		return val, nil
	case []any:
		for i, child := range val {
			cleaned, err := s.walk(path, key, child)
			if err != nil {
				return nil, err
			}
			val[i] = cleaned
		}
		return val, nil
	default:
		return v, nil
	}
}

// Sanitize strips markup, script protocols and inline event handlers.
// Entities are decoded before the policy runs so encoded tags are stripped
// too; the policy's own escaping of the remaining text is then undone.
func (s *Sanitizer) Sanitize(in string) string {
	out := html.UnescapeString(strings.TrimSpace(in))
	for {
		cleaned := html.UnescapeString(s.policy.Sanitize(out))
		if cleaned == out {
			break
		}
		out = cleaned
	}
	out = scriptProtocol.ReplaceAllString(out, "")
	return eventHandler.ReplaceAllString(out, "")
}

func (s *Sanitizer) sanitizeValue(key, v string) string {
	if exemptKeys[key] {
		return v
	}
	return s.Sanitize(v)
}

func (s *Sanitizer) guard(path, key, v string) error {
	if !s.sqlGuard || exemptKeys[key] {
		return nil
	}
	for _, p := range sqlPatterns {
		if p.MatchString(v) {
			return &errors.ValidationError{Fields: []errors.FieldError{{
				Field:   path,
				Message: "contains potentially harmful content",
			}}}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
