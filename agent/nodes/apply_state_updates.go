package assistantnode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

// ApplyContextUpdates folds every result's update into the session context in
// dispatch order. Error results carry no update.
func ApplyContextUpdates(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Context = applyContextUpdates(in.Session.Context, in.Results)
	in.Session.Touch(in.Now)
	return in, nil
}

func applyContextUpdates(c statex.ConversationContext, results []contractx.ToolResult) statex.ConversationContext {
	for _, res := range results {
		if res.IsError {
			continue
		}
		c = c.Apply(res.ContextUpdate)
	}
	return c
}
