package main

import (
	"fmt"

	"github.com/danmuck/t3codec/internal/config"
	logs "github.com/danmuck/t3codec/internal/logging"
	"github.com/danmuck/t3codec/internal/observability"
	"github.com/danmuck/t3codec/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the codec HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultServiceConfig()
			if configPath != "" {
				loaded, err := loadServiceConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if logLevel == "" && cfg.LogLevel != "" && !logs.SetLevel(cfg.LogLevel) {
				return fmt.Errorf("unknown log level %q", cfg.LogLevel)
			}

			opts, err := cfg.serverOptions()
			if err != nil {
				return err
			}
			observability.InitLogger(opts.Name, cmd.ErrOrStderr())
			return server.Appear(opts).Serve()
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Service config TOML")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address override")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate config files",
	}

	var force bool
	template := &cobra.Command{
		Use:   "template <codec|service> <path>",
		Short: "Write a config template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[1], args[0], force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config template to %s\n", args[0], args[1])
			return nil
		},
	}
	template.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	validate := &cobra.Command{
		Use:   "validate <codec|service> <path>",
		Short: "Validate an existing config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "codec":
				if _, err := config.LoadCodecConfig(args[1]); err != nil {
					return err
				}
			case "service":
				cfg, err := loadServiceConfig(args[1])
				if err != nil {
					return err
				}
				if _, err := cfg.serverOptions(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown config kind: %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "validated %s config at %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(template, validate)
	return cmd
}
