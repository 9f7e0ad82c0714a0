// Package interval partitions chronologically ordered per-game files into
// consecutive, non-overlapping intervals and builds a lineup table per
// interval.
package interval

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var dateToken = regexp.MustCompile(`\d{6}`)

// File is one discovered per-game input.
type File struct {
	Path  string
	Token string // YYMMDD
}

// Name returns the base name of the file.
func (f File) Name() string { return filepath.Base(f.Path) }

// Interval is one contiguous partition of the ordered files.
type Interval struct {
	Num   int
	Files []File
}

// Size returns the number of games in the interval.
func (iv Interval) Size() int { return len(iv.Files) }

// Tokens returns the date tokens of the interval's files in order.
func (iv Interval) Tokens() []string {
	out := make([]string, len(iv.Files))
	for i, f := range iv.Files {
		out[i] = f.Token
	}
	return out
}

// Start returns the first game token.
func (iv Interval) Start() string {
	if len(iv.Files) == 0 {
		return ""
	}
	return iv.Files[0].Token
}

// End returns the last game token.
func (iv Interval) End() string {
	if len(iv.Files) == 0 {
		return ""
	}
	return iv.Files[len(iv.Files)-1].Token
}

// ParseSizes parses a comma-separated list like "3,2,3". Blank items are
// ignored; an empty list or a non-positive or non-integer item is rejected.
func ParseSizes(spec string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrNonPositiveSize, part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrNonPositiveSize, n)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w (example: \"3,2,3\")", ErrEmptySizes)
	}
	return sizes, nil
}

// DateToken extracts the first 6-digit run from the base name of path.
func DateToken(path string) (string, error) {
	tok := dateToken.FindString(filepath.Base(path))
	if tok == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingDateToken, filepath.Base(path))
	}
	return tok, nil
}

// Order keeps paths that carry a date token and sorts them chronologically.
// Equal tokens fall back to the file name so the order is total.
func Order(paths []string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		tok, err := DateToken(p)
		if err != nil {
			continue
		}
		files = append(files, File{Path: p, Token: tok})
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Token != files[j].Token {
			return files[i].Token < files[j].Token
		}
		return files[i].Name() < files[j].Name()
	})
	return files
}

// Discover globs dir/pattern and returns the dated files in chronological
// order. It fails with ErrNoFiles when nothing usable matches.
func Discover(dir, pattern string) ([]File, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	files := Order(paths)
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %q matching %q", ErrNoFiles, dir, pattern)
	}
	return files, nil
}

// Partition splits files into consecutive groups of the given sizes. The
// sizes must sum to len(files) exactly.
func Partition(files []File, sizes []int) ([]Interval, error) {
	need := 0
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrNonPositiveSize, s)
		}
		need += s
	}
	if len(sizes) == 0 {
		return nil, ErrEmptySizes
	}
	if len(files) != need {
		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Name()
		}
		return nil, &MismatchError{
			Sizes:    append([]int(nil), sizes...),
			Expected: need,
			Found:    len(files),
			Files:    names,
		}
	}

	out := make([]Interval, 0, len(sizes))
	at := 0
	for i, s := range sizes {
		out = append(out, Interval{Num: i + 1, Files: files[at : at+s : at+s]})
		at += s
	}
	return out, nil
}
