// Package cmd is the command line entry point.
package cmd

import (
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/config"
	logx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/logger"
)

func NewRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "airline-assistant",
		Short:         "Tool dispatch and conversation context for the airline booking assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configx.SetEnvFile(envFile)
			conf, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*conf)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "env file to load before reading configuration (default ./.env when present)")

	root.AddCommand(
		newServeCommand(),
		newDispatchCommand(),
		newAskCommand(),
		newToolsCommand(),
	)
	return root
}

func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
