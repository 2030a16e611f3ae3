package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"imgcat/internal/config"
	"imgcat/internal/logging"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create, inspect and check the configuration",
		// Subcommands load the file themselves so a broken config can be
		// reported instead of aborting in the root pre-run.
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented sample configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.root_dir to your image directory, then run `imgcat scan`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(flagValue)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after defaults and overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			data, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report what a scan would touch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			source := path
			if !exists {
				source += " (not found, defaults used)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, source, colorize))

			kind, state := rootState(cfg)
			fmt.Fprintln(out, renderStatusLine("Scan root", kind, cfg.Paths.RootDir+" "+state, colorize))

			catalogState := "(created on first scan)"
			if _, err := os.Stat(cfg.Paths.Database); err == nil {
				catalogState = "(exists)"
			}
			fmt.Fprintln(out, renderStatusLine("Catalog", statusInfo, cfg.Paths.Database+" "+catalogState, colorize))

			logTarget := "disabled"
			if cfg.Paths.LogDir != "" {
				logTarget = filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			}
			fmt.Fprintln(out, renderStatusLine("Log file", statusInfo, logTarget, colorize))
			fmt.Fprintln(out, renderStatusLine("Extensions", statusInfo, strings.Join(cfg.Scan.Extensions, ", "), colorize))

			if kind == statusError {
				return fmt.Errorf("scan root %s is unusable %s", cfg.Paths.RootDir, state)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func rootState(cfg *config.Config) (statusKind, string) {
	info, err := os.Stat(cfg.Paths.RootDir)
	switch {
	case err == nil && info.IsDir():
		return statusOK, "(exists)"
	case err == nil:
		return statusError, "(not a directory)"
	case cfg.Paths.CreateRoot:
		return statusWarn, "(missing, created on first scan)"
	default:
		return statusError, "(missing)"
	}
}
