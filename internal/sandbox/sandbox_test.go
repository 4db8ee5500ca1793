package sandbox

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-arena/internal/board"
)

func emptySnap() board.Snapshot { return board.New(6, 5).Snapshot() }

func fixed(ret string) string {
	return "def strategy(letters_board, status_board):\n    return " + ret + "\n"
}

func TestInvoke_ValidGuessIsUppercased(t *testing.T) {
	got, err := Invoke(context.Background(), fixed(`"crane"`), emptySnap())
	require.NoError(t, err)
	assert.Equal(t, "CRANE", got)
}

func TestInvoke_RejectsInvalidResults(t *testing.T) {
	tests := map[string]string{
		"too short": `"AB"`,
		"too long":  `"ABCDEF"`,
		"empty":     `""`,
		"digit":     `"CR4NE"`,
		"space":     `"CR NE"`,
		"non-ascii": `"CRÄNE"`,
		"int":       `12345`,
		"none":      `None`,
		"list":      `["C", "R", "A", "N", "E"]`,
	}
	for name, ret := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Invoke(context.Background(), fixed(ret), emptySnap())
			require.ErrorIs(t, err, ErrInvalidResult)
		})
	}
}

func TestLoad_Failures(t *testing.T) {
	tests := map[string]string{
		"syntax":           "def strategy(a, b)\n    return 'CRANE'",
		"missing":          "def other(a, b):\n    return 'CRANE'",
		"not callable":     "strategy = 'CRANE'",
		"forbidden import": "import os\ndef strategy(a, b):\n    return 'CRANE'",
		"unknown name":     "def strategy(a, b):\n    return open('/etc/passwd')",
	}
	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Invoke(context.Background(), code, emptySnap())
			var ee *EvalError
			require.True(t, errors.As(err, &ee), "got %v", err)
			assert.Equal(t, PhaseLoad, ee.Phase)
		})
	}
}

func TestInvoke_RuntimeErrorIsEvalError(t *testing.T) {
	code := "def strategy(a, b):\n    return a[99][0]"
	_, err := Invoke(context.Background(), code, emptySnap())
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, PhaseCall, ee.Phase)
}

func TestInvoke_StepBudget(t *testing.T) {
	code := "def strategy(a, b):\n    while True:\n        pass\n"
	_, err := Invoke(context.Background(), code, emptySnap(), WithMaxSteps(10_000))
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, PhaseCall, ee.Phase)
}

func TestInvoke_ContextCancellation(t *testing.T) {
	s, err := Load("def strategy(a, b):\n    while True:\n        pass\n", WithMaxSteps(1<<62))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Invoke(ctx, emptySnap())
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
}

func TestInvoke_ReadsFullHistory(t *testing.T) {
	b := board.New(6, 5)
	cells := []board.Cell{
		{Letter: 'S', Status: board.Correct},
		{Letter: 'L', Status: board.Absent},
		{Letter: 'A', Status: board.Absent},
		{Letter: 'T', Status: board.Absent},
		{Letter: 'E', Status: board.Misplaced},
	}
	require.NoError(t, b.WriteRow(0, cells))

	code := `
def strategy(letters_board, status_board):
    first = ""
    for row in range(len(letters_board)):
        if status_board[row][0] == 3:
            first = letters_board[row][0]
    if first == "":
        return "CRANE"
    return first + "HORE"
`
	got, err := Invoke(context.Background(), code, b.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, "SHORE", got)
}

func TestInvoke_MutationsDoNotLeak(t *testing.T) {
	snap := emptySnap()
	code := "def strategy(l, s):\n    l[0][0] = 'Z'\n    s[0][0] = 3\n    return 'CRANE'"
	_, err := Invoke(context.Background(), code, snap)
	require.NoError(t, err)
	assert.Equal(t, "", snap.Letters[0][0])
	assert.Equal(t, 0, snap.Status[0][0])
}

func TestInvoke_NoStatePersistsBetweenCalls(t *testing.T) {
	code := `
seen = []
def strategy(l, s):
    seen.append(1)
    return "CRANE"
`
	s, err := Load(code)
	require.NoError(t, err)
	_, err = s.Invoke(context.Background(), emptySnap())
	require.Error(t, err, "frozen globals cannot be mutated")
}

func TestBindings_ImportsAndRandom(t *testing.T) {
	code := `
def strategy(letters_board, status_board):
    import random
    import string as st
    from random import choice as pick
    word = ""
    for _ in range(5):
        word += pick(st.ascii_uppercase)
    if random.randint(1, 1) != 1:
        return "X"
    return word
`
	a, err := Invoke(context.Background(), code, emptySnap(), WithSeed(7))
	require.NoError(t, err)
	b, err := Invoke(context.Background(), code, emptySnap(), WithSeed(7))
	require.NoError(t, err)
	assert.Len(t, a, 5)
	assert.Equal(t, a, b, "same seed, same guess")
}

func TestBindings_RestrictedSet(t *testing.T) {
	code := "import random\ndef strategy(a, b):\n    return 'CRANE'"
	_, err := Invoke(context.Background(), code, emptySnap(), WithBindings("string"))
	var ee *EvalError
	require.ErrorAs(t, err, &ee)

	_, err = Load("def strategy(a, b):\n    return 'CRANE'", WithBindings("os"))
	require.Error(t, err)
}

func TestRewriteImports(t *testing.T) {
	s := &Strategy{opts: buildOptions(nil), rng: rand.New(rand.NewPCG(1, 2))}
	pre, err := s.predeclared()
	require.NoError(t, err)

	out, err := rewriteImports("    import random, string\n    from string import ascii_lowercase as low", pre)
	require.NoError(t, err)
	assert.Equal(t, "    pass\n    low = string.ascii_lowercase", out)

	_, err = rewriteImports("from string import digits", pre)
	require.Error(t, err)
	_, err = rewriteImports("from random import *", pre)
	require.Error(t, err)
}

func TestLoad_ImportTextInsideStringsIsIgnored(t *testing.T) {
	code := `def strategy(letters_board, status_board):
    notes = """
import os
from sys import path
"""
    tip = '''
import subprocess'''
    return "crane"
`
	got, err := Invoke(context.Background(), code, emptySnap())
	require.NoError(t, err)
	assert.Equal(t, "CRANE", got)
}

func TestTripleQuoteState(t *testing.T) {
	tests := []struct {
		line, open, want string
	}{
		{`x = 1`, "", ""},
		{`doc = """`, "", `"""`},
		{`import os`, `"""`, `"""`},
		{`end """ + 'a'`, `"""`, ""},
		{`s = '"""'  # not a triple quote`, "", ""},
		{`# """ in a comment`, "", ""},
		{`t = '''one''' + """`, "", `"""`},
		{`escaped \""" still open`, `"""`, `"""`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tripleQuoteState(tt.line, tt.open), tt.line)
	}
}
