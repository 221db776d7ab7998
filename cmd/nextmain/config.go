// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/nextmain/nextmain/internal/config"
	"github.com/nextmain/nextmain/pkg/types"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `nextmain config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nextmain configuration",
		Long: `Manage nextmain configuration.

Configuration is read from config.cue in the working directory, or else from:
  - Linux: ~/.config/nextmain/config.cue
  - macOS: ~/Library/Application Support/nextmain/config.cue
  - Windows: %APPDATA%\nextmain\config.cue

Environment variables prefixed with ` + config.EnvPrefix + `_ override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), loadOptions(rootFlags))
			if err != nil {
				return err
			}
			path, err := app.Config.Locate(loadOptions(rootFlags))
			if err != nil {
				return err
			}
			showConfig(app, cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file that would be loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.Config.Locate(loadOptions(rootFlags))
			if err != nil {
				return err
			}
			if path == "" {
				if path, err = config.ConfigFilePath(); err != nil {
					return err
				}
				fmt.Fprintf(app.stdout, "%s %s\n", path, SubtitleStyle.Render("(not present, using defaults)"))
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), loadOptions(rootFlags))
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig(rootFlags.configPath)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Config file already exists: %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created config file: %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	return cfgCmd
}

func loadOptions(rootFlags *rootFlagValues) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: types.FilesystemPath(rootFlags.configPath)}
}

func showConfig(app *App, cfg *config.Config, path string) {
	w := app.stdout
	key := CmdStyle.Render
	value := SuccessStyle.Render

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), path)
	}
	fmt.Fprintln(w)

	roots := strings.Join(cfg.RootStrings(), ", ")
	if roots == "" {
		roots = SubtitleStyle.Render("(working directory)")
	} else {
		roots = value(roots)
	}
	fmt.Fprintf(w, "%s: %s\n", key("roots"), roots)
	fmt.Fprintf(w, "%s: %s\n", key("manifest_cache_size"), value(fmt.Sprint(cfg.ManifestCacheSize)))
	fmt.Fprintf(w, "%s: %s\n", key("extensions"), value(strings.Join(cfg.ExtensionStrings(), ", ")))
	fmt.Fprintf(w, "%s: %s\n", key("ui.color_scheme"), value(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "%s: %s\n", key("ui.verbose"), value(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(w, "%s: %s\n", key("watch.patterns"), value(strings.Join(cfg.Watch.Patterns, ", ")))
	fmt.Fprintf(w, "%s: %s\n", key("watch.ignore"), value(strings.Join(cfg.Watch.Ignore, ", ")))
	fmt.Fprintf(w, "%s: %s\n", key("watch.debounce"), value(cfg.Watch.Debounce.String()))
}
