package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-arena/internal/config"
	"github.com/robalobadob/wordle-arena/internal/env"
	"github.com/robalobadob/wordle-arena/internal/words"
)

// localConfig builds the in-process environment settings from cfg.
func localConfig(c config.Config) (env.LocalConfig, error) {
	list, err := words.Load(c.AnswersFile, c.AllowedFile)
	if err != nil {
		return env.LocalConfig{}, fmt.Errorf("load word lists: %w", err)
	}
	a, g := list.Stats()
	log.Debug().Int("answers", a).Int("allowed", g).Msg("word lists loaded")
	return env.LocalConfig{
		Words:       list,
		Mode:        c.EnvMode,
		Answer:      c.EnvAnswer,
		Salt:        c.DailySalt,
		MaxAttempts: c.MaxAttempts,
		Strict:      c.EnvStrict,
		Seed:        c.EnvSeed,
	}, nil
}

// envFactory returns a remote factory when ENV_URL is set, else an in-process one.
func envFactory(c config.Config) (env.Factory, error) {
	if c.EnvURL != "" {
		return env.ClientFactory(c.EnvURL, env.WithSecret(c.EnvSecret)), nil
	}
	lc, err := localConfig(c)
	if err != nil {
		return nil, err
	}
	if _, err := env.NewLocal(lc); err != nil {
		return nil, err
	}
	return env.LocalFactory(lc), nil
}
