package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/predictduel/go/clients"
	"github.com/mcdev12/predictduel/go/internal/duel/engine"
	"github.com/mcdev12/predictduel/go/internal/duel/questions"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Duel      DuelConfig      `yaml:"duel"`
	Questions QuestionsConfig `yaml:"questions"`
}

// DuelConfig is the rules section of the config file. Durations are milliseconds.
type DuelConfig struct {
	RoundsTotal       int                `yaml:"rounds_total"`
	RoundTimeMS       int                `yaml:"round_time_ms"`
	AwardPerCorrect   int                `yaml:"award_per_correct"`
	InterRoundDelayMS int                `yaml:"inter_round_delay_ms"`
	QuestionTimeoutMS int                `yaml:"question_timeout_ms"`
	OnSourceFailure   string             `yaml:"on_source_failure"`
	FallbackQuestion  questions.Question `yaml:"fallback_question"`
}

type QuestionsConfig struct {
	Provider    string               `yaml:"provider"`
	URL         string               `yaml:"url"`
	MarketLimit int                  `yaml:"market_limit"`
	Static      []questions.Question `yaml:"static"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func defaultConfig() *Config {
	d := engine.DefaultConfig()
	return &Config{
		Duel: DuelConfig{
			RoundsTotal:       d.RoundsTotal,
			RoundTimeMS:       int(d.RoundTime / time.Millisecond),
			AwardPerCorrect:   d.AwardPerCorrect,
			InterRoundDelayMS: int(d.InterRoundDelay / time.Millisecond),
			QuestionTimeoutMS: int(d.QuestionTimeout / time.Millisecond),
			OnSourceFailure:   string(d.OnSourceFailure),
			FallbackQuestion:  d.FallbackQuestion,
		},
		Questions: QuestionsConfig{
			Provider: string(clients.QuestionProviderGamma),
		},
	}
}

// loadConfig reads the YAML file at path over the defaults. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// applyEnv lets the environment override the question provider settings
func (c *Config) applyEnv() {
	c.Questions.Provider = getEnv("QUESTION_PROVIDER", c.Questions.Provider)
	c.Questions.URL = getEnv("QUESTION_URL", c.Questions.URL)
	c.Questions.MarketLimit = getEnvAsInt("QUESTION_MARKET_LIMIT", c.Questions.MarketLimit)
}

func (c *Config) engineConfig() (engine.Config, error) {
	cfg := engine.Config{
		RoundsTotal:      c.Duel.RoundsTotal,
		RoundTime:        time.Duration(c.Duel.RoundTimeMS) * time.Millisecond,
		AwardPerCorrect:  c.Duel.AwardPerCorrect,
		InterRoundDelay:  time.Duration(c.Duel.InterRoundDelayMS) * time.Millisecond,
		QuestionTimeout:  time.Duration(c.Duel.QuestionTimeoutMS) * time.Millisecond,
		OnSourceFailure:  engine.FailurePolicy(c.Duel.OnSourceFailure),
		FallbackQuestion: c.Duel.FallbackQuestion,
	}
	if cfg.FallbackQuestion.ID == "" {
		cfg.FallbackQuestion.ID = "fallback"
	}
	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}
