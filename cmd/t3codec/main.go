package main

import (
	"fmt"
	"os"

	logs "github.com/danmuck/t3codec/internal/logging"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var logLevel string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "t3codec",
		Short:         "Ternary frame codec",
		Long:          `Protect and recover 27-trit word streams with the T3 superframe codec.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logs.ConfigureRuntime()
			if logLevel != "" && !logs.SetLevel(logLevel) {
				return fmt.Errorf("unknown log level %q", logLevel)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newSelftestCmd(),
		newServeCmd(),
		newConfigCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "t3codec: %v\n", err)
		os.Exit(1)
	}
}
