package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "framecap.toml"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "framecap",
		Short:         "Capture frames from an off-screen render target",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringP("config", "c", defaultConfigPath, "Path to configuration file")

	root.AddCommand(newCaptureCmd(), newDescribeCmd())
	return root
}
