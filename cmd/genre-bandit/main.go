package main

import (
	"log"
	"os"

	"github.com/Fuchsoria/genre-bandit/internal/version"
	"github.com/spf13/cobra"
)

var configFile string

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "genre-bandit",
		Short:         "Genre recommendation with multi-armed bandits",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")

	cmd.AddCommand(
		serveCommand(),
		simulateCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				version.Fprint(cmd.OutOrStdout())
			},
		},
	)

	return cmd
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
