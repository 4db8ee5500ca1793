// internal/sandbox/bindings.go
//
// The enumerated binding set visible to strategies, and the import rewriter.
//
// Bindings:
//   - random: randint, randrange, choice, shuffle, random. Seeded per Strategy,
//     so a run is reproducible for a fixed seed.
//   - string: ascii_uppercase, ascii_lowercase, ascii_letters.
//
// Imports:
//   Starlark has no import statement. Lines such as `import random`,
//   `import random as r` or `from string import ascii_uppercase` that name an
//   enumerated binding are rewritten into plain assignments against the
//   predeclared module. Anything else is refused.

package sandbox

import (
	"fmt"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// DefaultBindings is the complete set strategies may use.
var DefaultBindings = []string{"random", "string"}

const (
	asciiLower = "abcdefghijklmnopqrstuvwxyz"
	asciiUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func (s *Strategy) predeclared() (starlark.StringDict, error) {
	out := make(starlark.StringDict, len(s.opts.Bindings))
	for _, name := range s.opts.Bindings {
		switch name {
		case "random":
			out[name] = s.randomModule()
		case "string":
			out[name] = stringModule()
		default:
			return nil, fmt.Errorf("sandbox: unknown binding %q", name)
		}
	}
	return out, nil
}

func stringModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "string",
		Members: starlark.StringDict{
			"ascii_lowercase": starlark.String(asciiLower),
			"ascii_uppercase": starlark.String(asciiUpper),
			"ascii_letters":   starlark.String(asciiLower + asciiUpper),
		},
	}
}

func (s *Strategy) randomModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "random",
		Members: starlark.StringDict{
			"randint":   starlark.NewBuiltin("randint", s.randint),
			"randrange": starlark.NewBuiltin("randrange", s.randrange),
			"choice":    starlark.NewBuiltin("choice", s.choice),
			"shuffle":   starlark.NewBuiltin("shuffle", s.shuffle),
			"random":    starlark.NewBuiltin("random", s.random),
		},
	}
}

// randint(a, b) returns an int in [a, b].
func (s *Strategy) randint(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var a, b int
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 2, &a, &b); err != nil {
		return nil, err
	}
	if b < a {
		return nil, fmt.Errorf("%s: empty range [%d, %d]", fn.Name(), a, b)
	}
	return starlark.MakeInt(a + s.rng.IntN(b-a+1)), nil
}

// randrange(stop) or randrange(start, stop) returns an int in [start, stop).
func (s *Strategy) randrange(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var start, stop int
	var stopSet starlark.Value
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &start, &stopSet); err != nil {
		return nil, err
	}
	if stopSet == nil {
		start, stop = 0, start
	} else {
		n, err := starlark.AsInt32(stopSet)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn.Name(), err)
		}
		stop = n
	}
	if stop <= start {
		return nil, fmt.Errorf("%s: empty range [%d, %d)", fn.Name(), start, stop)
	}
	return starlark.MakeInt(start + s.rng.IntN(stop-start)), nil
}

// choice(seq) returns a random element of a non-empty string, list or tuple.
func (s *Strategy) choice(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var seq starlark.Indexable
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &seq); err != nil {
		return nil, err
	}
	n := seq.Len()
	if n == 0 {
		return nil, fmt.Errorf("%s: empty sequence", fn.Name())
	}
	return seq.Index(s.rng.IntN(n)), nil
}

// shuffle(list) permutes a list in place.
func (s *Strategy) shuffle(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var l *starlark.List
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &l); err != nil {
		return nil, err
	}
	for i := l.Len() - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		vi, vj := l.Index(i), l.Index(j)
		if err := l.SetIndex(i, vj); err != nil {
			return nil, err
		}
		if err := l.SetIndex(j, vi); err != nil {
			return nil, err
		}
	}
	return starlark.None, nil
}

// random() returns a float in [0, 1).
func (s *Strategy) random(_ *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.Float(s.rng.Float64()), nil
}

// ----------------------------- imports -------------------------------------

var (
	importLine = regexp.MustCompile(`^(\s*)import\s+(.+?)\s*$`)
	fromLine   = regexp.MustCompile(`^(\s*)from\s+([A-Za-z_][A-Za-z0-9_.]*)\s+import\s+(.+?)\s*$`)
)

// rewriteImports turns import statements naming predeclared modules into
// assignments, preserving indentation so block structure is unchanged.
// Lines inside triple-quoted strings are left alone.
func rewriteImports(code string, predeclared starlark.StringDict) (string, error) {
	lines := strings.Split(code, "\n")
	open := ""
	for i, line := range lines {
		inString := open != ""
		open = tripleQuoteState(line, open)
		if inString {
			continue
		}
		if m := fromLine.FindStringSubmatch(line); m != nil {
			stmt, err := rewriteFrom(m[2], m[3], predeclared)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			lines[i] = m[1] + stmt
			continue
		}
		if m := importLine.FindStringSubmatch(line); m != nil {
			stmt, err := rewriteImport(m[2], predeclared)
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			lines[i] = m[1] + stmt
		}
	}
	return strings.Join(lines, "\n"), nil
}

// tripleQuoteState scans one line and returns the triple-quote delimiter left
// open at its end, given the one open at its start ("" for none).
func tripleQuoteState(line, open string) string {
	for i := 0; i < len(line); {
		if open != "" {
			switch {
			case strings.HasPrefix(line[i:], open):
				open = ""
				i += 3
			case line[i] == '\\':
				i += 2
			default:
				i++
			}
			continue
		}
		switch c := line[i]; {
		case c == '#':
			return ""
		case strings.HasPrefix(line[i:], `"""`), strings.HasPrefix(line[i:], "'''"):
			open = line[i : i+3]
			i += 3
		case c == '"', c == '\'':
			// single-line string literal
			j := i + 1
			for j < len(line) && line[j] != c {
				if line[j] == '\\' {
					j++
				}
				j++
			}
			i = j + 1
		default:
			i++
		}
	}
	return open
}

func rewriteImport(spec string, predeclared starlark.StringDict) (string, error) {
	var stmts []string
	for _, item := range splitItems(spec) {
		name, alias := splitAlias(item)
		if _, ok := predeclared[name]; !ok {
			return "", fmt.Errorf("import of %q is not permitted", name)
		}
		if alias != name {
			stmts = append(stmts, alias+" = "+name)
		}
	}
	if len(stmts) == 0 {
		return "pass", nil
	}
	return strings.Join(stmts, "; "), nil
}

func rewriteFrom(module, spec string, predeclared starlark.StringDict) (string, error) {
	mod, ok := predeclared[module]
	if !ok {
		return "", fmt.Errorf("import of %q is not permitted", module)
	}
	attrs, _ := mod.(starlark.HasAttrs)
	var stmts []string
	for _, item := range splitItems(spec) {
		name, alias := splitAlias(item)
		if name == "*" {
			return "", fmt.Errorf("wildcard import from %q is not permitted", module)
		}
		if attrs != nil {
			if v, err := attrs.Attr(name); err != nil || v == nil {
				return "", fmt.Errorf("%s has no member %q", module, name)
			}
		}
		stmts = append(stmts, alias+" = "+module+"."+name)
	}
	if len(stmts) == 0 {
		return "pass", nil
	}
	return strings.Join(stmts, "; "), nil
}

func splitItems(spec string) []string {
	spec = strings.Trim(strings.TrimSpace(spec), "()")
	var out []string
	for _, p := range strings.Split(spec, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitAlias(item string) (name, alias string) {
	fields := strings.Fields(item)
	if len(fields) == 3 && fields[1] == "as" {
		return fields[0], fields[2]
	}
	return item, item
}
