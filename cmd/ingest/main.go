// Package main is the offline ingestion job: it replays archived webhook
// payload files into the message store.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ingest",
		Short:        "Replay archived webhook payloads into the message store",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "config.yaml", "Config file path")

	cmd.AddCommand(newRunCmd())

	return cmd
}
