package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

//go:embed template/planner.txt
var plannerRaw string

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Planner string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Planner: strings.TrimSpace(plannerRaw),
	}
}

// Validate rejects prompts the eino FString template cannot render verbatim.
func (p PromptSet) Validate() error {
	if p.Planner == "" {
		return fmt.Errorf("%w: planner", contractx.ErrPromptMissing)
	}
	if strings.ContainsAny(p.Planner, "{}") {
		return fmt.Errorf("%w: planner prompt must not contain braces", contractx.ErrValidation)
	}
	return nil
}
