package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const (
	MinLevel     = 1
	MaxLevel     = 63
	DefaultLevel = 2
)

var (
	ErrNilInput        = errors.New("input lines are nil")
	ErrLevelOutOfRange = errors.New("domain level out of range")
)

var levelPatterns [MaxLevel + 1]struct {
	once sync.Once
	re   *regexp.Regexp
}

// DomainLevelPattern returns an ASCII case-insensitive matcher for the trailing
// level labels of a host. Level 1 matches the bare final label ("com"),
// level 2 "example.com", and so on. The pattern is anchored at the end only.
func DomainLevelPattern(level int) (*regexp.Regexp, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrLevelOutOfRange, level, MinLevel, MaxLevel)
	}
	p := &levelPatterns[level]
	p.once.Do(func() {
		p.re = regexp.MustCompile(buildLevelPattern(level))
	})
	return p.re, nil
}

func buildLevelPattern(level int) string {
	var b strings.Builder
	for i := 1; i < level; i++ {
		b.WriteString(`[a-zA-Z0-9-]+\.`)
	}
	b.WriteString(`[a-zA-Z]{2,}$`)
	return b.String()
}
