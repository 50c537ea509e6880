// Package fileset expands glob patterns into deterministic, ordered file lists.
//
// Patterns use doublestar syntax (`**`, `{a,b}`) and are always slash-separated
// and relative to a project root. Results are relative slash paths.
package fileset

import (
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Pattern is a named set of include globs minus exclude globs.
type Pattern struct {
	Include []string
	Exclude []string
}

// Glob builds a Pattern from a single include glob.
func Glob(include string, exclude ...string) Pattern {
	return Pattern{Include: []string{include}, Exclude: exclude}
}

// Without returns a copy of p with extra exclusions.
func (p Pattern) Without(exclude ...string) Pattern {
	out := Pattern{Include: append([]string(nil), p.Include...)}
	out.Exclude = append(append([]string(nil), p.Exclude...), exclude...)
	return out
}

// Match reports whether the relative slash path rel belongs to p.
func (p Pattern) Match(rel string) bool {
	included := false
	for _, inc := range p.Include {
		if ok, _ := doublestar.Match(inc, rel); ok {
			included = true
			break
		}
	}
	return included && !p.excluded(rel)
}

func (p Pattern) excluded(rel string) bool {
	for _, exc := range p.Exclude {
		if ok, _ := doublestar.Match(exc, rel); ok {
			return true
		}
	}
	return false
}

// Validate checks every glob in p.
func (p Pattern) Validate() error {
	for _, g := range append(append([]string(nil), p.Include...), p.Exclude...) {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("invalid glob pattern %q", g)
		}
	}
	return nil
}

// Resolve expands p against root. The result is sorted and contains regular files only.
// A root or folder that does not exist yields an empty result.
func Resolve(root string, p Pattern) ([]string, error) {
	return resolveFS(os.DirFS(root), p)
}

// Ordered expands several patterns against root and concatenates them in group order.
// Each group is sorted; a file matched by an earlier group keeps that position.
// exclude applies to every group.
func Ordered(root string, groups []Pattern, exclude ...string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		files, err := resolveFS(fsys, g.Without(exclude...))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out, nil
}

func resolveFS(fsys fs.FS, p Pattern) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, inc := range p.Include {
		matches, err := doublestar.Glob(fsys, inc)
		if err != nil {
			return nil, fmt.Errorf("expanding pattern %q: %w", inc, err)
		}
		for _, m := range matches {
			if p.excluded(m) {
				continue
			}
			info, err := fs.Stat(fsys, m)
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", m, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
			set[m] = struct{}{}
		}
	}

	// must sort explicitly, directory order differs across platforms
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}
