package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ErrMalformedURL is returned when a candidate cannot be parsed as an absolute URL.
var ErrMalformedURL = errors.New("malformed url")

// Classifier sorts candidate strings into platform buckets.
//
// By default a candidate belongs to a platform when it contains one of the
// platform's domains anywhere in the string, query string included. With strict
// hosts enabled only the parsed host is compared, and it must equal the domain or
// be a subdomain of it.
type Classifier struct {
	strictHosts bool
	logger      *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithStrictHosts switches matching from substring containment to host matching.
func WithStrictHosts(strict bool) ClassifierOption {
	return func(c *Classifier) {
		c.strictHosts = strict
	}
}

// WithClassifierLogger sets the logger used for skipped candidates.
func WithClassifierLogger(logger *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify is shorthand for NewClassifier().Classify.
func Classify(candidates []string) *Result {
	return NewClassifier().Classify(candidates)
}

// Classify builds a Result from candidates in order.
// Candidates that match no platform, or that match but are malformed, are skipped.
func (c *Classifier) Classify(candidates []string) *Result {
	res := NewResult()
	skipped := 0

	for _, candidate := range candidates {
		p, ok := c.Match(candidate)
		if !ok {
			continue
		}

		username, err := Username(candidate)
		if err != nil {
			skipped++
			c.logger.Debug("skipping candidate", "candidate", candidate, "error", err)
			continue
		}

		res.add(p, Link{URL: candidate, Username: username})
	}

	if skipped > 0 {
		c.logger.Debug("classification finished",
			"candidates", len(candidates),
			"classified", res.Total(),
			"malformed", skipped,
		)
	}

	return res
}

// Match returns the first platform, in priority order, that claims the candidate.
func (c *Classifier) Match(candidate string) (Platform, bool) {
	if c.strictHosts {
		return matchHost(candidate)
	}
	for _, p := range platformOrder {
		for _, domain := range platformDomains[p] {
			if strings.Contains(candidate, domain) {
				return p, true
			}
		}
	}
	return 0, false
}

// matchHost compares the parsed hostname against the platform domains.
func matchHost(candidate string) (Platform, bool) {
	u, err := parseAbsolute(candidate)
	if err != nil {
		return 0, false
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range platformOrder {
		for _, domain := range platformDomains[p] {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return p, true
			}
		}
	}
	return 0, false
}

// Username derives a display username from the first non-empty path segment.
// The segment is returned in its escaped form. A URL without path segments
// yields an empty username.
func Username(raw string) (string, error) {
	_, path, err := splitAbsolute(raw)
	if err != nil {
		return "", err
	}
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg, nil
		}
	}
	return "", nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, _, err := splitAbsolute(raw)
	return u, err
}

// splitAbsolute parses raw as an absolute URL and returns its escaped path.
// A '%' that does not start a valid escape is kept verbatim, as browsers do.
func splitAbsolute(raw string) (*url.URL, string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	path := ""
	var escErr url.EscapeError
	if errors.As(err, &escErr) {
		u, err = url.Parse(escapeStrayPercents(raw))
		path = rawPath(raw)
	} else if err == nil {
		path = u.EscapedPath()
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q is not absolute", ErrMalformedURL, raw)
	}
	return u, path, nil
}

// escapeStrayPercents rewrites every '%' not followed by two hex digits as "%25".
func escapeStrayPercents(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// rawPath returns the path of an absolute URL string exactly as written.
func rawPath(raw string) string {
	_, rest, ok := strings.Cut(raw, "//")
	if !ok {
		return ""
	}
	i := strings.IndexAny(rest, "/?#")
	if i < 0 || rest[i] != '/' {
		return ""
	}
	rest = rest[i:]
	if j := strings.IndexAny(rest, "?#"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
