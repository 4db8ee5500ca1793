// internal/extract/extract.go
//
// Isolates the strategy definition from free-form model output.
//
// Scanning:
//   - A two-state scanner walks the text once, toggling between "outside" and
//     "inside" at every ``` marker. Regions are collected in order; a fence that
//     is never closed does not produce a region.
//   - Each region is trimmed and loses an optional language tag on its first line.
//   - Inside a region, every "def strategy" header starts a candidate that runs
//     until the next top-level "\ndef " header or the end of the region.
//
// Selection:
//   - Models tend to echo the instruction's template block before answering, so
//     the SECOND candidate is the one returned. Fewer than two is ErrNotFound.

package extract

import (
	"errors"
	"strings"
)

const (
	fence          = "```"
	strategyHeader = "def strategy"
	topLevelDef    = "\ndef "
	selectedIndex  = 1
)

// ErrNotFound is returned when the text holds fewer than two strategy candidates.
var ErrNotFound = errors.New("extract: no usable strategy definition found")

// Extract returns the selected strategy source, header included.
func Extract(raw string) (string, error) {
	cands := Candidates(raw)
	if len(cands) <= selectedIndex {
		return "", ErrNotFound
	}
	return cands[selectedIndex], nil
}

// Candidates returns every strategy definition found across all fenced regions,
// in order of appearance.
func Candidates(raw string) []string {
	var out []string
	for _, region := range Regions(raw) {
		out = append(out, definitions(region)...)
	}
	return out
}

// Regions returns the contents of every closed fenced region, trimmed and with
// any language tag removed.
func Regions(raw string) []string {
	var (
		regions []string
		inside  bool
		start   int
	)
	for i := 0; i+len(fence) <= len(raw); {
		if raw[i:i+len(fence)] != fence {
			i++
			continue
		}
		if inside {
			regions = append(regions, stripLanguageTag(strings.TrimSpace(raw[start:i])))
		} else {
			start = i + len(fence)
		}
		inside = !inside
		i += len(fence)
	}
	return regions
}

// definitions scans one region for strategy headers.
func definitions(region string) []string {
	var out []string
	pos := 0
	for pos < len(region) {
		idx := strings.Index(region[pos:], strategyHeader)
		if idx < 0 {
			break
		}
		begin := pos + idx
		end := len(region)
		if next := strings.Index(region[begin+1:], topLevelDef); next >= 0 {
			end = begin + 1 + next
		}
		out = append(out, strings.TrimSpace(region[begin:end]))
		pos = end
	}
	return out
}

// stripLanguageTag drops a first line that is a bare tag such as "python" or
// "starlark". Lines holding code (spaces, parens, colons) are kept.
func stripLanguageTag(region string) string {
	nl := strings.IndexByte(region, '\n')
	if nl < 0 {
		if isTag(region) {
			return ""
		}
		return region
	}
	if isTag(strings.TrimRight(region[:nl], "\r")) {
		return region[nl+1:]
	}
	return region
}

func isTag(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '+', r == '-', r == '_', r == '.', r == '#':
		default:
			return false
		}
	}
	return true
}
