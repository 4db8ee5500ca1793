package env

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-arena/internal/board"
)

func fixedLocal(t *testing.T, answer string) *Local {
	t.Helper()
	l, err := NewLocal(LocalConfig{Mode: ModeFixed, Answer: answer})
	require.NoError(t, err)
	return l
}

func TestLocal_ResetAndWin(t *testing.T) {
	ctx := context.Background()
	l := fixedLocal(t, "crane")

	obs, err := l.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, obs.MaxAttempts)
	assert.Equal(t, 0, obs.AttemptNumber)
	assert.Empty(t, obs.Feedback)
	require.NoError(t, ValidateReset(obs))

	obs, err = l.Step(ctx, Action{Guess: "CRANE"})
	require.NoError(t, err)
	require.NoError(t, Validate(obs, 5))
	assert.True(t, obs.GameWon)
	assert.Equal(t, 1, obs.AttemptNumber)
	assert.Equal(t, "CRANE", obs.CorrectWord)
	assert.Equal(t, 1.0, obs.Reward)
	for _, fb := range obs.Feedback {
		assert.Equal(t, Correct, fb.Status)
	}
}

func TestLocal_FeedbackMapping(t *testing.T) {
	ctx := context.Background()
	l := fixedLocal(t, "crane")
	_, err := l.Reset(ctx)
	require.NoError(t, err)

	obs, err := l.Step(ctx, Action{Guess: "nacho"})
	require.NoError(t, err)
	assert.Equal(t, []LetterFeedback{
		{Letter: "N", Status: WrongPosition},
		{Letter: "A", Status: WrongPosition},
		{Letter: "C", Status: WrongPosition},
		{Letter: "H", Status: NotInWord},
		{Letter: "O", Status: NotInWord},
	}, obs.Feedback)
	assert.False(t, obs.GameWon)
	assert.Empty(t, obs.CorrectWord, "answer stays hidden mid-game")
}

func TestLocal_LossRevealsAnswer(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(LocalConfig{Mode: ModeFixed, Answer: "crane", MaxAttempts: 2})
	require.NoError(t, err)
	_, err = l.Reset(ctx)
	require.NoError(t, err)

	_, err = l.Step(ctx, Action{Guess: "slate"})
	require.NoError(t, err)
	obs, err := l.Step(ctx, Action{Guess: "slate"})
	require.NoError(t, err)
	assert.True(t, obs.GameLost)
	assert.Equal(t, "CRANE", obs.CorrectWord)
}

func TestLocal_Errors(t *testing.T) {
	ctx := context.Background()
	l := fixedLocal(t, "crane")
	_, err := l.Step(ctx, Action{Guess: "crane"})
	require.ErrorIs(t, err, ErrNotReset)

	_, err = NewLocal(LocalConfig{Mode: ModeFixed, Answer: "ab"})
	require.Error(t, err)
	_, err = NewLocal(LocalConfig{Mode: "weekly"})
	require.Error(t, err)

	strict, err := NewLocal(LocalConfig{Mode: ModeFixed, Answer: "crane", Strict: true})
	require.NoError(t, err)
	_, err = strict.Reset(ctx)
	require.NoError(t, err)
	_, err = strict.Step(ctx, Action{Guess: "qzxvw"})
	require.Error(t, err)
}

func TestLocal_DailyAndRandomModes(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(LocalConfig{Mode: ModeDaily, Salt: "s"})
	require.NoError(t, err)
	_, err = d.Reset(ctx)
	require.NoError(t, err)
	assert.Len(t, d.game.Answer, 5)

	r, err := NewLocal(LocalConfig{Seed: 42})
	require.NoError(t, err)
	_, err = r.Reset(ctx)
	require.NoError(t, err)
	assert.Len(t, r.game.Answer, 5)
}

// factoryAnswers resets n sessions from f and returns the answers they drew.
func factoryAnswers(t *testing.T, f Factory, n int) []string {
	t.Helper()
	ctx := context.Background()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		e, err := f(ctx)
		require.NoError(t, err)
		_, err = e.Reset(ctx)
		require.NoError(t, err)
		out = append(out, e.(*Local).game.Answer)
		require.NoError(t, e.Close())
	}
	return out
}

func distinct(ss []string) int {
	seen := map[string]struct{}{}
	for _, s := range ss {
		seen[s] = struct{}{}
	}
	return len(seen)
}

func TestLocalFactory_RandomAnswersVaryAcrossSessions(t *testing.T) {
	for _, seed := range []uint64{0, 7} {
		answers := factoryAnswers(t, LocalFactory(LocalConfig{Mode: ModeRandom, Seed: seed}), 20)
		assert.Greater(t, distinct(answers), 1, "seed %d: %v", seed, answers)
	}
}

func TestLocalFactory_SeedIsReproducible(t *testing.T) {
	cfg := LocalConfig{Mode: ModeRandom, Seed: 7}
	a := factoryAnswers(t, LocalFactory(cfg), 5)
	b := factoryAnswers(t, LocalFactory(cfg), 5)
	assert.Equal(t, a, b)
}

func TestValidate(t *testing.T) {
	good := Observation{Feedback: []LetterFeedback{
		{"C", Correct}, {"R", NotInWord}, {"A", WrongPosition}, {"N", Correct}, {"E", Correct},
	}}
	require.NoError(t, Validate(good, 5))

	short := good
	short.Feedback = good.Feedback[:4]
	require.ErrorIs(t, Validate(short, 5), ErrUnusable)

	bad := Observation{Feedback: append([]LetterFeedback{}, good.Feedback...)}
	bad.Feedback[2].Status = "MAYBE"
	require.ErrorIs(t, Validate(bad, 5), ErrUnusable)

	bad.Feedback[2] = LetterFeedback{Letter: "", Status: Correct}
	require.ErrorIs(t, Validate(bad, 5), ErrUnusable)

	both := good
	both.GameWon, both.GameLost = true, true
	require.ErrorIs(t, Validate(both, 5), ErrUnusable)

	require.ErrorIs(t, ValidateReset(Observation{}), ErrUnusable)
}

func TestCells(t *testing.T) {
	cells, err := Cells(Observation{Feedback: []LetterFeedback{{"c", Correct}, {"r", WrongPosition}, {"a", NotInWord}}})
	require.NoError(t, err)
	assert.Equal(t, []board.Cell{
		{Letter: 'c', Status: board.Correct},
		{Letter: 'r', Status: board.Misplaced},
		{Letter: 'a', Status: board.Absent},
	}, cells)
}

type failingEnv struct{ resetErr, stepErr error }

func (f *failingEnv) Reset(context.Context) (Observation, error) {
	return Observation{MaxAttempts: 6}, f.resetErr
}
func (f *failingEnv) Step(context.Context, Action) (Observation, error) {
	return Observation{}, f.stepErr
}
func (f *failingEnv) Close() error { return nil }

func TestSession_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, obs, err := Open(ctx, LocalFactory(LocalConfig{Mode: ModeFixed, Answer: "crane"}))
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, 6, obs.MaxAttempts)

	_, err = s.Step(ctx, Action{Guess: "slate"})
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	_, err = s.Step(ctx, Action{Guess: "crane"})
	require.ErrorIs(t, err, ErrSessionClosed)
	_, err = s.Reset(ctx)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_ResetStartsNewGame(t *testing.T) {
	ctx := context.Background()
	s := NewSession(&failingEnv{})
	obs, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, obs.MaxAttempts)
	require.NoError(t, s.Close())
}

func TestSession_OpenFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	_, _, err := Open(ctx, func(context.Context) (Environment, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, _, err = Open(ctx, func(context.Context) (Environment, error) { return &failingEnv{resetErr: boom}, nil })
	require.ErrorIs(t, err, boom)

	s, _, err := Open(ctx, func(context.Context) (Environment, error) { return &failingEnv{stepErr: boom}, nil })
	require.NoError(t, err)
	_, err = s.Step(ctx, Action{Guess: "crane"})
	require.ErrorIs(t, err, boom)
}
