// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nextmain/nextmain/internal/issue"
	"github.com/nextmain/nextmain/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "nextmain",
		Short: `Resolve bare imports to their package's "jsnext:main" entry`,
		Long: TitleStyle.Render("nextmain") + SubtitleStyle.Render(` - resolve bare imports through "jsnext:main"`) + `

nextmain finds the file a bare import such as 'lodash-es' or '@scope/pkg'
should load when bundling ES modules: the nearest package.json of the
importing file scopes a node_modules lookup, and the installed package's
"jsnext:main" field names the entry file.

Relative imports are left alone. Packages without "jsnext:main" are
reported, never guessed.

` + SubtitleStyle.Render("Examples:") + `
  nextmain resolve lodash-es                 Resolve from the working directory
  nextmain resolve d3 --from src/app.js      Resolve as imported by src/app.js
  nextmain resolve d3 --output json          Machine-readable output
  nextmain watch d3 --from src/app.js        Re-resolve when packages change
  nextmain config show                       Show current configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $HOME/.config/nextmain/config.cue)")

	rootCmd.AddCommand(newResolveCommand(app, flags))
	rootCmd.AddCommand(newWatchCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
