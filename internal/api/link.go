package api

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="([^"]+)"`)

// ParseLinkHeader parses an RFC 8288 style Link header into rel -> URL.
//
//	<https://x/y?page=2>; rel="next", <https://x/y?page=9>; rel="last"
//
// Entries that do not match <URL>; rel="REL" are skipped.
func ParseLinkHeader(header string) map[string]string {
	links := make(map[string]string)
	if header == "" {
		return links
	}

	for _, part := range strings.Split(header, ",") {
		m := linkPattern.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		links[m[2]] = m[1]
	}
	return links
}

// SplitNextURL separates a pagination URL into its query-less URL and its
// query parameters, so the next request can be issued like the first.
func SplitNextURL(raw string) (string, url.Values, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("parse next link: %w", err)
	}

	params := u.Query()
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String(), params, nil
}
