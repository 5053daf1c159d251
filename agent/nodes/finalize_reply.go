package assistantnode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
)

// FinalizeReply projects the results into envelopes. A planner message comes
// first, as plain text.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	c := in.Session.Context
	envelopes := make([]contractx.Envelope, 0, len(in.Results)+1)
	if msg := strings.TrimSpace(in.Message); msg != "" {
		envelopes = append(envelopes, textEnvelope(msg, c))
	}
	for _, res := range in.Results {
		envelopes = append(envelopes, tool.Project(res, c))
	}
	if len(envelopes) == 0 {
		return GraphOutput{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrSchemaViolation)
	}

	return GraphOutput{Envelopes: envelopes, Context: c}, nil
}

func textEnvelope(text string, c statex.ConversationContext) contractx.Envelope {
	lang := c.Locale
	if lang == "" {
		lang = statex.DefaultLocale
	}
	return contractx.Envelope{
		Text:             text,
		Suggestions:      []string{},
		DetectedLanguage: lang,
	}
}
