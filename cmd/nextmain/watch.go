// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/nextmain/nextmain/internal/issue"
	"github.com/nextmain/nextmain/internal/watch"
	"github.com/nextmain/nextmain/pkg/fspath"
	"github.com/nextmain/nextmain/pkg/module"
	"github.com/nextmain/nextmain/pkg/types"

	"github.com/spf13/cobra"
)

type watchFlagValues struct {
	from        string
	roots       []string
	clearScreen bool
}

func newWatchCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &watchFlagValues{}

	watchCmd := &cobra.Command{
		Use:   "watch <specifier>...",
		Short: "Re-resolve specifiers whenever an installed package changes",
		Long: `Resolve the specifiers once, then watch every directory that decided the
outcome: the importer's package, the node_modules directories searched, and
the target package with its entry file. Each change re-resolves through a
fresh container, so edits to package.json or reinstalls are picked up.

Patterns, ignores and the debounce period come from the watch section of
the configuration. Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, app, rootFlags, flags, args)
		},
	}

	watchCmd.Flags().StringVar(&flags.from, "from", "", "file the specifiers are imported from (default: the first root)")
	watchCmd.Flags().StringArrayVar(&flags.roots, "root", nil, "search root, repeatable (overrides configured roots)")
	watchCmd.Flags().BoolVar(&flags.clearScreen, "clear", false, "clear the terminal before each run")

	return watchCmd
}

func runWatch(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *watchFlagValues, args []string) error {
	s, err := app.newSession(cmd.Context(), rootFlags, flags.roots)
	if err != nil {
		return err
	}
	from, err := importer(flags.from)
	if err != nil {
		return err
	}
	opts := s.textOptions(false, rootFlags.verbose)

	// run resolves everything in a fresh container and returns the
	// directories to watch for the next change.
	run := func() ([]string, error) {
		c, err := s.newContainer()
		if err != nil {
			return nil, err
		}
		results := s.resolveAll(args, from, c)
		writeText(app.stdout, Report{Resolutions: results}, opts)
		return s.watchDirs(args, from, c), nil
	}

	dirs, err := run()
	if err != nil {
		return err
	}

	var w *watch.Watcher
	w, err = watch.New(watch.Config{
		Dirs:        dirs,
		Patterns:    s.cfg.Watch.Patterns,
		Ignore:      s.cfg.Watch.Ignore,
		Debounce:    s.cfg.Watch.Debounce,
		ClearScreen: flags.clearScreen,
		Stdout:      app.stdout,
		Logger:      s.logger,
		OnChange: func(_ context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "\n%s %d change(s), re-resolving\n", CmdStyle.Render("→"), len(changed))
			next, err := run()
			if err != nil {
				return err
			}
			return w.SetDirs(next)
		},
	})
	if err != nil {
		return watchError(err)
	}

	fmt.Fprintf(app.stdout, "\n%s Watching %d directories (Ctrl+C to stop)\n", CmdStyle.Render("→"), len(w.Dirs()))
	if err := w.Run(cmd.Context()); err != nil {
		return watchError(err)
	}
	return nil
}

// watchDirs collects the directories every specifier depends on. Without
// an importer each root is included, matching the resolver's root fallback.
func (s *session) watchDirs(specs []string, from *module.Module, c *module.Container) []string {
	var bases []types.FilesystemPath
	if from != nil {
		bases = []types.FilesystemPath{fspath.Dir(from.Path)}
	} else {
		bases = s.resolver.Roots()
	}

	locator := s.resolver.Locator()
	var dirs []string
	for _, raw := range specs {
		spec := types.Specifier(raw)
		if !spec.IsExternal() {
			continue
		}
		for _, base := range bases {
			for _, dir := range locator.Inputs(spec, base, c.Manifests()) {
				dirs = append(dirs, string(dir))
			}
		}
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func watchError(err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("watch packages").
		WithIssue(issue.WatchFailedId)
	if errors.Is(err, watch.ErrWatcherBroken) {
		ctx.WithSuggestion("Raise fs.inotify.max_user_watches or the open file limit, then restart")
	}
	return ctx.Wrap(err).BuildError()
}
