package util

import (
	"errors"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var ErrBadDomain = errors.New("invalid domain")

// Hostname cuts a stored host such as "example.com:8080/path" down to
// "example.com". Input is expected to be lowercased already.
func Hostname(host string) string {
	if i := strings.IndexAny(host, ":/"); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}

// SiteOf returns the registrable domain (eTLD+1) of host, e.g.
// "biz.hommits.by" -> "hommits.by", "shop.example.co.uk" -> "example.co.uk".
func SiteOf(host string) (string, error) {
	h := Hostname(strings.TrimSpace(strings.ToLower(host)))
	if h == "" {
		return "", ErrBadDomain
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(h)
	if err != nil {
		return "", ErrBadDomain
	}
	return site, nil
}
