package antiphish

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
)

var linkPattern = regexp.MustCompile(`https?://[^\s]+`)

// Query parameters that identify campaigns, not content. Stripping
// them makes the same link normalize to the same string every time.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
}

func ExtractURLs(content string) []string {
	return linkPattern.FindAllString(content, -1)
}

// NormalizeURL canonicalizes one link for list matching: the host is
// lower-cased and punycoded, credentials, fragments and tracking
// parameters are dropped, and the remaining query keys come out in a
// stable order. Returns the cleaned URL and its bare domain.
func NormalizeURL(raw string) (string, string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	host := strings.ToLower(parsed.Hostname())
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}
	parsed.Host = host
	parsed.User = nil
	parsed.Fragment = ""

	query := parsed.Query()
	for key := range query {
		if _, drop := trackingParams[key]; drop {
			query.Del(key)
		}
	}
	// Encode emits keys sorted, which is the stable order we need.
	parsed.RawQuery = query.Encode()

	return parsed.String(), host, nil
}

// DomainMatch checks a domain against the guild's lists. The allowlist
// wins when a domain appears on both.
func DomainMatch(domain string, allowlist, blocklist map[string]struct{}) (allowed, blocked bool) {
	domain = strings.ToLower(domain)
	if _, ok := allowlist[domain]; ok {
		return true, false
	}
	if _, ok := blocklist[domain]; ok {
		return false, true
	}
	return false, false
}
