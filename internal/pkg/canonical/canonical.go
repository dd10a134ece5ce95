// Package canonical implements URL canonicalization and the
// deterministic article fingerprint used by every parser family to
// compute RawArticle.ExternalID.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// URL canonicalizes a raw article URL for fingerprinting purposes
// (open question 3 in SPEC_FULL.md §5): lowercase scheme and host,
// strip a trailing slash from the path, strip the fragment, and sort
// the query string by key. This canonicalization is used ONLY for
// fingerprinting; the original URL is stored verbatim in
// RawArticle.URL.
func URL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		// Not a parseable URL: fall back to the raw string so
		// fingerprinting is still deterministic for degenerate input.
		return raw
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	if parsed.RawQuery != "" {
		values := parsed.Query()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for i, k := range keys {
			vals := values[k]
			sort.Strings(vals)
			for j, v := range vals {
				if i > 0 || j > 0 {
					sb.WriteByte('&')
				}
				sb.WriteString(url.QueryEscape(k))
				sb.WriteByte('=')
				sb.WriteString(url.QueryEscape(v))
			}
		}
		parsed.RawQuery = sb.String()
	}

	return parsed.String()
}

// StableHash computes external_id = stable_hash(source_id, canonical_url,
// title): a SHA-256, hex-encoded fingerprint that is deterministic
// across processes and languages, and changes for any one-character
// change in title or URL (spec §8 property 3).
func StableHash(sourceID int64, articleURL, title string) string {
	input := fmt.Sprintf("%d\x00%s\x00%s", sourceID, URL(articleURL), title)
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
