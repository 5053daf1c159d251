package llm

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/openrouter"
)

type Backend string

const (
	BackendNone   Backend = "none"
	BackendEino   Backend = "eino"
	BackendOpenAI Backend = "openai"
)

// Config selects the planner backend and is loaded with the PLANNER prefix.
// Model, Temperature and MaxTokens override the shared OpenRouter settings
// when set.
type Config struct {
	Backend     Backend `split_words:"true" default:"none"`
	Model       string  `split_words:"true"`
	Temperature float32 `split_words:"true" default:"-1"`
	MaxTokens   int     `split_words:"true" default:"0"`
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendNone, BackendEino, BackendOpenAI:
		return nil
	default:
		return fmt.Errorf("%w: unknown planner backend %q", contractx.ErrValidation, c.Backend)
	}
}

func (c Config) Enabled() bool {
	return c.Backend == BackendEino || c.Backend == BackendOpenAI
}

// ForPlanner layers the planner overrides on base.
func (c Config) ForPlanner(base openrouterx.Config) openrouterx.Config {
	out := base
	if v := strings.TrimSpace(c.Model); v != "" {
		out.Model = v
	}
	if c.Temperature >= 0 {
		out.Temperature = c.Temperature
	}
	if c.MaxTokens > 0 {
		out.MaxCompletionToken = c.MaxTokens
	}
	return out
}
