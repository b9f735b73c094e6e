package core

import (
	"fmt"
	"strings"
)

// Platform is one of the social networks LinkSort recognises.
type Platform int

const (
	Twitter Platform = iota
	YouTube
	Instagram
	Facebook
)

// platformOrder is the fixed priority and display order.
var platformOrder = [...]Platform{Twitter, YouTube, Instagram, Facebook}

var platformNames = [...]string{
	Twitter:   "Twitter",
	YouTube:   "YouTube",
	Instagram: "Instagram",
	Facebook:  "Facebook",
}

// platformDomains lists the substrings that identify each platform.
var platformDomains = [...][]string{
	Twitter:   {"twitter.com", "x.com"},
	YouTube:   {"youtube.com"},
	Instagram: {"instagram.com"},
	Facebook:  {"facebook.com"},
}

// Platforms returns every platform in priority order.
func Platforms() []Platform {
	out := make([]Platform, len(platformOrder))
	copy(out, platformOrder[:])
	return out
}

// String returns the display name, e.g. "YouTube".
func (p Platform) String() string {
	if !p.valid() {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return platformNames[p]
}

// Domains returns the identifying substrings for the platform.
func (p Platform) Domains() []string {
	if !p.valid() {
		return nil
	}
	out := make([]string, len(platformDomains[p]))
	copy(out, platformDomains[p])
	return out
}

func (p Platform) valid() bool {
	return p >= Twitter && p <= Facebook
}

// ParsePlatform resolves a display name back to a Platform.
// Matching ignores case and surrounding whitespace.
func ParsePlatform(name string) (Platform, bool) {
	name = strings.TrimSpace(name)
	for _, p := range platformOrder {
		if strings.EqualFold(platformNames[p], name) {
			return p, true
		}
	}
	return 0, false
}

// MarshalText encodes the platform as its display name.
func (p Platform) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("unknown platform %d", int(p))
	}
	return []byte(platformNames[p]), nil
}

// UnmarshalText decodes a display name.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, ok := ParsePlatform(string(text))
	if !ok {
		return fmt.Errorf("unknown platform %q", text)
	}
	*p = parsed
	return nil
}
