// Package fingerprint turns marketplace product URLs into stable identities used for deduplication.
package fingerprint

import (
	"net/url"
	"regexp"
	"strings"
)

// Matcher extracts a marketplace catalog id from a cleaned URL.
type Matcher struct {
	Name   string
	Prefix string
	// Hosts lists host fragments the matcher applies to.
	Hosts []string
	// Pattern must capture the catalog id in its first group and is matched against the path.
	Pattern *regexp.Regexp
}

func (m Matcher) match(host, path string) (string, bool) {
	if !hostMatches(host, m.Hosts) {
		return "", false
	}
	groups := m.Pattern.FindStringSubmatch(path)
	if len(groups) < 2 || groups[1] == "" {
		return "", false
	}
	return m.Prefix + strings.ToUpper(groups[1]), true
}

func hostMatches(host string, fragments []string) bool {
	if len(fragments) == 0 {
		return true
	}
	for _, f := range fragments {
		if strings.Contains(host, f) {
			return true
		}
	}
	return false
}

var (
	amazonPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Za-z0-9]{10})(?:/|$)`)
	noonPattern   = regexp.MustCompile(`/([A-Za-z0-9]+)/p(?:/|$)`)
)

// DefaultMatchers are tried in order; the first match wins.
var DefaultMatchers = []Matcher{
	{Name: "amazon", Prefix: "AMZN-", Hosts: []string{"amazon.", "amzn."}, Pattern: amazonPattern},
	{Name: "noon", Prefix: "NOON-", Hosts: []string{"noon.com"}, Pattern: noonPattern},
}

// Canonicalizer computes fingerprints with an ordered list of matchers.
type Canonicalizer struct {
	matchers []Matcher
}

// New creates a Canonicalizer. With no matchers the DefaultMatchers are used.
func New(matchers ...Matcher) *Canonicalizer {
	if len(matchers) == 0 {
		matchers = DefaultMatchers
	}
	return &Canonicalizer{matchers: matchers}
}

var defaultCanonicalizer = New()

// Canonicalize returns the fingerprint of rawURL using the default matchers.
func Canonicalize(rawURL string) string {
	return defaultCanonicalizer.Canonicalize(rawURL)
}

// Canonicalize strips query and fragment, tries each marketplace matcher and falls back to the
// lower-cased cleaned URL.
func (c *Canonicalizer) Canonicalize(rawURL string) string {
	cleaned := CleanURL(rawURL)

	host, path := splitHostPath(cleaned)
	for _, m := range c.matchers {
		if id, ok := m.match(host, path); ok {
			return id
		}
	}

	return strings.ToLower(cleaned)
}

// CleanURL removes the query string, the fragment and trailing slashes. Case is preserved.
func CleanURL(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

func splitHostPath(cleaned string) (string, string) {
	raw := cleaned
	if !strings.Contains(raw, "://") {
		// pasted links often lack a scheme
		raw = "https://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", cleaned
	}
	// trailing slash was stripped by CleanURL; patterns accept end of string instead
	return strings.ToLower(u.Host), u.Path
}
