package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoed = "Output ONLY your function:\n```python\ndef strategy(letters_board, status_board):\n    # your code\n```\n"

const answer = `def strategy(letters_board, status_board):
    return "CRANE"`

func TestExtract_SecondCandidateWins(t *testing.T) {
	raw := echoed + "Sure, here it is:\n```python\n" + answer + "\n```\nGood luck!"

	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, answer, got)
}

func TestExtract_FewerThanTwo(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no fences":     "def strategy(a, b):\n    return 'CRANE'",
		"one candidate": "```python\n" + answer + "\n```",
		"unclosed":      echoed + "```python\n" + answer,
		"other defs":    "```\ndef helper():\n    pass\n```\n```\ndef guess():\n    pass\n```",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Extract(raw)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestExtract_ThreeCandidatesStillSecond(t *testing.T) {
	second := "def strategy(l, s):\n    return \"SLATE\""
	raw := echoed + "```\n" + second + "\n```\n```\ndef strategy(l, s):\n    return \"TRACE\"\n```"

	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestCandidates_SplitAtTopLevelDef(t *testing.T) {
	region := "```starlark\n" +
		"def strategy(l, s):\n    def inner():\n        return 1\n    return \"CRANE\"\n" +
		"def helper():\n    return 2\n" +
		"def strategy(l, s):\n    return \"SLATE\"\n```"

	got := Candidates(region)
	require.Len(t, got, 2)
	assert.Equal(t, "def strategy(l, s):\n    def inner():\n        return 1\n    return \"CRANE\"", got[0])
	assert.Equal(t, "def strategy(l, s):\n    return \"SLATE\"", got[1])
}

func TestRegions_LanguageTag(t *testing.T) {
	regions := Regions("```python\nx = 1\n``` and ```\ndef f(): pass\n``` and ```py\n```")
	require.Len(t, regions, 3)
	assert.Equal(t, "x = 1", regions[0])
	assert.Equal(t, "def f(): pass", regions[1])
	assert.Equal(t, "", regions[2])
}

func TestExtract_CandidatesAcrossRegions(t *testing.T) {
	raw := "```\ndef strategy(a, b):\n    return 'AAAAA'\n```\ntext\n```\ndef strategy(a, b):\n    return 'BBBBB'\n```"
	got, err := Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "def strategy(a, b):\n    return 'BBBBB'", got)
}
