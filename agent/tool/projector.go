package tool

import (
	"encoding/json"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

// Project converts a tool result into the envelope the channel renders.
// UIData is normalized to plain JSON values so every channel sees the same
// shape regardless of the domain types a handler returned. Error results keep
// their payload in UIData for the channel to inspect but never carry a UIType.
func Project(res contractx.ToolResult, c statex.ConversationContext) contractx.Envelope {
	lang := c.Locale
	if lang == "" {
		lang = statex.DefaultLocale
	}

	env := contractx.Envelope{
		Tool:             res.Tool,
		Suggestions:      []string{},
		DetectedLanguage: lang,
		UIData:           normalize(res.Payload),
	}

	if res.IsError {
		env.IsError = true
		env.Text = res.Message()
		if prompt, ok := res.Payload["prompt"].(string); ok && prompt != "" {
			env.Suggestions = append(env.Suggestions, prompt)
		}
		return env
	}

	env.UIType = res.UIHint
	if !res.ContextUpdate.IsEmpty() {
		env.PendingContext = res.ContextUpdate
	}
	return env
}

func normalize(payload map[string]any) map[string]any {
	if len(payload) == 0 {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return map[string]any{"error": "result could not be encoded"}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"error": "result could not be encoded"}
	}
	return out
}
