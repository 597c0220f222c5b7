// Package glob wraps github.com/gobwas/glob for matching file names.
package glob

import (
	"github.com/gobwas/glob"
)

type Glob interface {
	Match(name string) bool
	Pattern() string
}

type globber struct {
	pattern string
	glob    glob.Glob
}

func Compile(pattern string, separators ...rune) (Glob, error) {
	g, err := glob.Compile(pattern, separators...)
	if err != nil {
		return nil, err
	}

	return &globber{pattern: pattern, glob: g}, nil
}

func (g *globber) Match(name string) bool {
	return g.glob.Match(name)
}

func (g *globber) Pattern() string {
	return g.pattern
}

// Match returns whether the name matches the glob pattern, also considering
// one or several optionnal separator. An error is only returned if the pattern
// is invalid.
func Match(pattern, name string, separators ...rune) (bool, error) {
	g, err := Compile(pattern, separators...)
	if err != nil {
		return false, err
	}

	return g.Match(name), nil
}

// QuoteMeta escapes all glob meta characters in s such that the result
// only matches s literally.
func QuoteMeta(s string) string {
	return glob.QuoteMeta(s)
}
