package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestClassify_Scenario(t *testing.T) {
	res := Classify([]string{
		"https://twitter.com/alice/status/1",
		"https://instagram.com/bob",
	})

	wantTwitter := []Link{{URL: "https://twitter.com/alice/status/1", Username: "alice"}}
	if got := res.Links(Twitter); !reflect.DeepEqual(got, wantTwitter) {
		t.Errorf("Twitter = %+v, want %+v", got, wantTwitter)
	}

	wantInstagram := []Link{{URL: "https://instagram.com/bob", Username: "bob"}}
	if got := res.Links(Instagram); !reflect.DeepEqual(got, wantInstagram) {
		t.Errorf("Instagram = %+v, want %+v", got, wantInstagram)
	}

	if n := res.Count(YouTube); n != 0 {
		t.Errorf("YouTube count = %d, want 0", n)
	}
	if n := res.Count(Facebook); n != 0 {
		t.Errorf("Facebook count = %d, want 0", n)
	}
}

func TestClassify_Platforms(t *testing.T) {
	tests := []struct {
		name         string
		candidate    string
		wantPlatform Platform
		wantUsername string
	}{
		{"twitter", "https://twitter.com/jack", Twitter, "jack"},
		{"x.com", "https://x.com/acgfbr/status/2006396789411172607", Twitter, "acgfbr"},
		{"mobile twitter", "https://mobile.twitter.com/jack/status/20", Twitter, "jack"},
		{"youtube channel", "https://www.youtube.com/@golang", YouTube, "@golang"},
		{"youtube watch", "https://youtube.com/watch?v=abc", YouTube, "watch"},
		{"instagram trailing slash", "https://instagram.com/bob/", Instagram, "bob"},
		{"facebook", "http://facebook.com/zuck", Facebook, "zuck"},
		{"no path", "https://facebook.com", Facebook, ""},
		{"root path", "https://twitter.com/", Twitter, ""},
		{"double slash", "https://twitter.com//alice", Twitter, "alice"},
		{"escaped segment", "https://instagram.com/ali%20ce", Instagram, "ali%20ce"},
		{"stray percent kept", "https://twitter.com/alice%zz", Twitter, "alice%zz"},
		{"stray percent in query", "https://youtube.com/@chan?q=100%", YouTube, "@chan"},
		{"surrounding whitespace", "  https://twitter.com/pad  ", Twitter, "pad"},
		// Substring containment is deliberately loose.
		{"domain in query", "https://example.com/share?u=facebook.com", Facebook, "share"},
		{"x.com inside other host", "https://dropbox.com/s/file", Twitter, "s"},
		{"lookalike host", "https://evil-twitter.com.attacker.net/login", Twitter, "login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify([]string{tt.candidate})
			links := res.Links(tt.wantPlatform)
			if len(links) != 1 {
				t.Fatalf("%s bucket has %d links, want 1 (rows: %+v)", tt.wantPlatform, len(links), res.Rows())
			}
			if links[0].Username != tt.wantUsername {
				t.Errorf("Username = %q, want %q", links[0].Username, tt.wantUsername)
			}
			if links[0].URL != tt.candidate {
				t.Errorf("URL = %q, want candidate unchanged %q", links[0].URL, tt.candidate)
			}
			if res.Total() != 1 {
				t.Errorf("Total = %d, want 1", res.Total())
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Matches both YouTube and Facebook; YouTube is checked first.
	res := Classify([]string{"https://youtube.com/redirect?to=facebook.com/page"})
	if res.Count(YouTube) != 1 || res.Count(Facebook) != 0 {
		t.Errorf("counts = %v, want YouTube only", res.Counts())
	}

	// Twitter outranks everything.
	res = Classify([]string{"https://instagram.com/p?ref=twitter.com"})
	if res.Count(Twitter) != 1 || res.Count(Instagram) != 0 {
		t.Errorf("counts = %v, want Twitter only", res.Counts())
	}
}

func TestClassify_DropsUnknownAndMalformed(t *testing.T) {
	res := Classify([]string{
		"https://example.com/foo",
		"just some text",
		"twitter.com/noscheme",
		"https://twitter.com:port/alice",
		"https://youtube.com/keep",
		"",
	})

	want := []Row{{Platform: YouTube, Username: "keep", URL: "https://youtube.com/keep"}}
	if got := res.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows = %+v, want %+v", got, want)
	}
}

func TestClassify_PreservesDiscoveryOrder(t *testing.T) {
	candidates := []string{
		"https://facebook.com/a",
		"https://twitter.com/b",
		"https://facebook.com/c",
		"https://example.org/ignored",
		"https://twitter.com/d",
		"https://facebook.com/a",
	}
	res := Classify(candidates)

	var fb []string
	for _, l := range res.Links(Facebook) {
		fb = append(fb, l.Username)
	}
	if want := []string{"a", "c", "a"}; !reflect.DeepEqual(fb, want) {
		t.Errorf("Facebook usernames = %v, want %v", fb, want)
	}

	var tw []string
	for _, l := range res.Links(Twitter) {
		tw = append(tw, l.Username)
	}
	if want := []string{"b", "d"}; !reflect.DeepEqual(tw, want) {
		t.Errorf("Twitter usernames = %v, want %v", tw, want)
	}
}

func TestClassify_UnionMatchesKnownSubstrings(t *testing.T) {
	candidates := []string{
		"https://twitter.com/1",
		"https://x.com/2",
		"https://youtube.com/3",
		"https://instagram.com/4",
		"https://facebook.com/5",
		"https://linkedin.com/in/6",
		"https://github.com/7",
	}
	res := Classify(candidates)
	if res.Total() != 5 {
		t.Errorf("Total = %d, want 5", res.Total())
	}
	for _, row := range res.Rows() {
		if row.URL == "https://linkedin.com/in/6" || row.URL == "https://github.com/7" {
			t.Errorf("unexpected row %+v", row)
		}
	}
}

func TestClassify_Empty(t *testing.T) {
	res := Classify(nil)
	if res.Total() != 0 {
		t.Errorf("Total = %d, want 0", res.Total())
	}
	for _, p := range Platforms() {
		if res.Count(p) != 0 {
			t.Errorf("%s count = %d, want 0", p, res.Count(p))
		}
	}
	if len(res.Platforms()) != 0 {
		t.Errorf("Platforms = %v, want none", res.Platforms())
	}
}

func TestClassifier_StrictHosts(t *testing.T) {
	c := NewClassifier(WithStrictHosts(true))

	tests := []struct {
		candidate string
		want      Platform
		wantOK    bool
	}{
		{"https://twitter.com/a", Twitter, true},
		{"https://mobile.twitter.com/a", Twitter, true},
		{"https://X.com/a", Twitter, true},
		{"https://m.facebook.com/a", Facebook, true},
		{"https://dropbox.com/s/file", 0, false},
		{"https://evil-twitter.com.attacker.net/login", 0, false},
		{"https://example.com/share?u=facebook.com", 0, false},
		{"not a url", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			got, ok := c.Match(tt.candidate)
			if ok != tt.wantOK {
				t.Fatalf("Match ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Match = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUsername_Malformed(t *testing.T) {
	for _, raw := range []string{"twitter.com/alice", "https://twitter.com:port/alice", "http://[::1", ""} {
		t.Run(raw, func(t *testing.T) {
			_, err := Username(raw)
			if !errors.Is(err, ErrMalformedURL) {
				t.Errorf("Username(%q) error = %v, want ErrMalformedURL", raw, err)
			}
		})
	}
}
