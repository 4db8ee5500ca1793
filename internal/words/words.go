// internal/words/words.go
//
// Word list management for the in-process guessing environment.
//
// Responsibilities:
//   - Load answer and allowed guess lists from configured files or fall back to embedded defaults.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Supply RandomAnswer, Answers, IsAllowed, IsAnswer and Stats.
//
// Word Lists:
//   - "answers": canonical solutions (exactly 5 lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Loading behavior (Load):
//   1. Both paths set: answers from the first, allowed guesses from the second.
//   2. Only the allowed path set: that file serves as both lists.
//   3. Neither set: embedded `default_small_answers.txt` / `default_small_allowed.txt`.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z); anything else is skipped.
//   • Lists are normalized to lowercase.

package words

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

// WordLength is the only word length the lists hold.
const WordLength = 5

//go:embed default_small_answers.txt
var embeddedAnswers string

//go:embed default_small_allowed.txt
var embeddedAllowed string

// ErrEmpty is returned when the answers list ends up empty.
var ErrEmpty = errors.New("words: answers list is empty")

// List is a loaded, immutable pair of answer and allowed-guess lists.
// It is safe for concurrent reads.
type List struct {
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{} // answers ∪ guesses
}

// Load builds a List from files, or from the embedded defaults when both paths are empty.
func Load(answersPath, allowedPath string) (*List, error) {
	var ansList, allowList []string
	var err error

	switch {
	case answersPath != "" && allowedPath != "":
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}

	case answersPath == "" && allowedPath != "":
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList

	case answersPath != "" && allowedPath == "":
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, err
		}
		allowList = normalizeLines(embeddedAllowed)

	default:
		ansList = normalizeLines(embeddedAnswers)
		allowList = normalizeLines(embeddedAllowed)
	}
	return FromSlices(ansList, allowList)
}

// Default returns the embedded lists. The embedded files always parse, so the
// only failure is an empty answers file, which is a build defect.
func Default() *List {
	l, err := FromSlices(normalizeLines(embeddedAnswers), normalizeLines(embeddedAllowed))
	if err != nil {
		panic(err)
	}
	return l
}

// FromSlices builds a List from in-memory words (normalized and filtered).
func FromSlices(answers, allowed []string) (*List, error) {
	ans := normalizeSlice(answers)
	if len(ans) == 0 {
		return nil, ErrEmpty
	}
	l := &List{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	// Ensure all answers are also marked as allowed
	for _, w := range normalizeSlice(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// readWordFile loads one word per line from a file,
// lowercases, trims, and keeps only valid 5-letter alphabetic words.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w, ok := normalizeWord(sc.Text()); ok {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// normalizeLines processes an embedded multiline string
// into a slice of valid lowercase 5-letter words.
func normalizeLines(s string) []string {
	return normalizeSlice(strings.Split(s, "\n"))
}

func normalizeSlice(in []string) []string {
	out := make([]string, 0, len(in))
	for _, line := range in {
		if w, ok := normalizeWord(line); ok {
			out = append(out, w)
		}
	}
	return out
}

func normalizeWord(s string) (string, bool) {
	w := strings.TrimSpace(strings.ToLower(s))
	return w, len(w) == WordLength && isAlpha(w)
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RandomAnswer returns a random answer drawn from rng.
func (l *List) RandomAnswer(rng *rand.Rand) string {
	return l.answers[rng.IntN(len(l.answers))]
}

// Answers returns the canonical answer list (all lowercase). Callers must not modify it.
func (l *List) Answers() []string { return l.answers }

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (l *List) IsAllowed(w string) bool {
	_, ok := l.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
