package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/agents/assistant"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

type identityFlags struct {
	session string
	id      statex.Identity
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.session, "session", "cli", "session id")
	cmd.Flags().StringVar(&f.id.UserID, "user", "", "logged-in user id")
	cmd.Flags().StringVar(&f.id.UserEmail, "email", "", "user email")
	cmd.Flags().StringVar(&f.id.UserOriginAirport, "origin", "", "home airport code")
	cmd.Flags().StringVar(&f.id.Locale, "locale", "", "reply locale")
}

func (f *identityFlags) empty() bool {
	return f.id == statex.Identity{}
}

func newDispatchCommand() *cobra.Command {
	var (
		who  identityFlags
		name string
		args string
	)

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Run one tool call against a session and print the reply",
		Example: `  airline-assistant dispatch --origin RUH --tool search_flights --args '{"destination":"JED","date":"next friday"}'
  airline-assistant dispatch --tool select_flight --args '{"flight_number":"SV100"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := json.RawMessage(strings.TrimSpace(args))
			if len(raw) == 0 {
				raw = json.RawMessage(`{}`)
			}
			if !json.Valid(raw) {
				return errors.New("--args must be a JSON object")
			}

			app, err := NewApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if !who.empty() {
				if _, err := app.Assistant.UpdateIdentity(cmd.Context(), who.session, who.id); err != nil {
					return err
				}
			}
			reply, err := app.Assistant.HandleToolCall(cmd.Context(), who.session, name, raw)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}
	who.register(cmd)
	cmd.Flags().StringVar(&name, "tool", "", "tool name")
	cmd.Flags().StringVar(&args, "args", "{}", "tool arguments as a JSON object")
	_ = cmd.MarkFlagRequired("tool")
	return cmd
}

func newAskCommand() *cobra.Command {
	var who identityFlags

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a free-text message through the planner",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, words []string) error {
			app, err := NewApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if !app.Assistant.HasPlanner() {
				return fmt.Errorf("%w: set PLANNER_BACKEND to eino or openai", assistant.ErrPlannerUnavailable)
			}
			if !who.empty() {
				if _, err := app.Assistant.UpdateIdentity(cmd.Context(), who.session, who.id); err != nil {
					return err
				}
			}
			reply, err := app.Assistant.HandleMessage(cmd.Context(), who.session, strings.Join(words, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), reply)
		},
	}
	who.register(cmd)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
