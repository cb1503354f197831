package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Letter classes are spelled out: under (?i) Go folds [a-z] onto U+017F and U+212A.
	uriPattern    = regexp.MustCompile(`^([hH][tT][tT][pP][sS]?://([wW][wW][wW]\.)?)?[a-zA-Z0-9]+([\-.][a-zA-Z0-9]+)*\.[a-zA-Z]{2,6}(:[0-9]{1,5})?(/.*)?$`)
	schemePattern = regexp.MustCompile(`^[hH][tT][tT][pP][sS]?://`)
)

// ParseLine validates a single "<visits> <uri>" line and decomposes the URI.
//
// Rules implemented:
//   - Split on the literal space; token 0 is the visit count, token 1 the URI,
//     anything after a second space is ignored. No space means an empty URI.
//   - Visits must be a base-10 integer in [0, MaxInt32].
//   - URI must be an optional http(s):// (and www.) prefix, dot or hyphen
//     separated alphanumeric labels, a 2-6 letter final label, then an
//     optional :port and /path.
//
// Both rules are always checked so a line can carry both reasons.
func ParseLine(line string) (Record, *ValidationError) {
	countTok, uriTok := splitLine(line)

	var reasons []string
	visits, err := strconv.ParseInt(countTok, 10, 32)
	if err != nil || visits < 0 {
		reasons = append(reasons, ReasonBadVisits)
	}
	if !uriPattern.MatchString(uriTok) {
		reasons = append(reasons, ReasonBadURI)
	}
	if len(reasons) > 0 {
		return Record{}, &ValidationError{Line: line, Reasons: reasons}
	}

	rec := decompose(uriTok)
	rec.Visits = int(visits)
	return rec, nil
}

func splitLine(line string) (string, string) {
	parts := strings.Split(line, " ")
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// decompose strips scheme and www from an already validated URI token.
func decompose(uri string) Record {
	var rec Record

	if loc := schemePattern.FindStringIndex(uri); loc != nil {
		rec.Scheme = asciiLower(uri[:loc[1]])
		uri = uri[loc[1]:]
	}

	// "wwwexample.com" still counts as www but keeps its host intact.
	if hasPrefixFold(uri, "www") {
		rec.HasWWW = true
		if hasPrefixFold(uri, "www.") {
			rec.wwwPrefix = "www."
			uri = uri[len("www."):]
		}
	}

	rec.Host = asciiLower(uri)
	return rec
}

// hasPrefixFold compares ASCII case-insensitively; prefix must be lowercase.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && asciiLower(s[:len(prefix)]) == prefix
}

// asciiLower maps only A-Z; other bytes, including UTF-8 sequences in a
// path, pass through unchanged.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
