// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/nextmain/nextmain/internal/issue"
	"github.com/nextmain/nextmain/pkg/fspath"
	"github.com/nextmain/nextmain/pkg/module"
	"github.com/nextmain/nextmain/pkg/resolver"
	"github.com/nextmain/nextmain/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
	outputTOML outputFormat = "toml"

	// stageInvalid labels specifiers rejected before resolution starts.
	stageInvalid = "invalid-specifier"
)

// ErrInvalidOutputFormat is returned for an unknown --output value.
var ErrInvalidOutputFormat = errors.New("invalid output format")

type (
	// outputFormat selects how resolve writes its report.
	outputFormat string

	resolveFlagValues struct {
		from    string
		roots   []string
		output  string
		explain bool
	}

	// Resolution is the outcome for one specifier.
	Resolution struct {
		Specifier string `json:"specifier" yaml:"specifier" toml:"specifier"`
		// Path is the resolved jsnext:main file.
		Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
		// Skipped is set for relative specifiers, which are not resolved.
		Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty" toml:"skipped,omitempty"`
		// Stage names the failed step.
		Stage string `json:"stage,omitempty" yaml:"stage,omitempty" toml:"stage,omitempty"`
		Error string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`

		err error
	}

	// Report is the document written by resolve.
	Report struct {
		Root        string       `json:"root" yaml:"root" toml:"root"`
		From        string       `json:"from,omitempty" yaml:"from,omitempty" toml:"from,omitempty"`
		Resolutions []Resolution `json:"resolutions" yaml:"resolutions" toml:"resolutions"`
	}
)

// Validate returns ErrInvalidOutputFormat for unknown formats.
func (f outputFormat) Validate() error {
	switch f {
	case outputText, outputJSON, outputYAML, outputTOML:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: text, json, yaml, toml)", ErrInvalidOutputFormat, string(f))
	}
}

// Failed reports whether the specifier was declined.
func (r Resolution) Failed() bool { return r.err != nil }

func newResolveCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &resolveFlagValues{}

	resolveCmd := &cobra.Command{
		Use:   "resolve <specifier>...",
		Short: `Resolve bare imports to their "jsnext:main" file`,
		Long: `Resolve each specifier the way an import in the --from file would.

All specifiers share one module container, so a package reached twice is
resolved once. Relative specifiers are reported as skipped.

The command exits with status 2 when any specifier cannot be resolved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, app, rootFlags, flags, args)
		},
	}

	resolveCmd.Flags().StringVar(&flags.from, "from", "", "file the specifiers are imported from (default: the first root)")
	resolveCmd.Flags().StringArrayVar(&flags.roots, "root", nil, "search root, repeatable (overrides configured roots)")
	resolveCmd.Flags().StringVarP(&flags.output, "output", "o", string(outputText), "output format: text, json, yaml or toml")
	resolveCmd.Flags().BoolVar(&flags.explain, "explain", false, "explain each failure with remediation steps")

	return resolveCmd
}

func runResolve(cmd *cobra.Command, app *App, rootFlags *rootFlagValues, flags *resolveFlagValues, args []string) error {
	format := outputFormat(flags.output)
	if err := format.Validate(); err != nil {
		return err
	}

	s, err := app.newSession(cmd.Context(), rootFlags, flags.roots)
	if err != nil {
		return err
	}
	c, err := s.newContainer()
	if err != nil {
		return err
	}
	from, err := importer(flags.from)
	if err != nil {
		return err
	}

	rep := Report{
		Root:        string(s.resolver.RootPath()),
		Resolutions: s.resolveAll(args, from, c),
	}
	if from != nil {
		rep.From = string(from.Path)
	}

	if format == outputText {
		writeText(app.stdout, rep, s.textOptions(flags.explain, rootFlags.verbose))
	} else if err := writeReport(app.stdout, format, rep); err != nil {
		return err
	}

	return unresolvedError(rep.Resolutions)
}

// importer returns the module specifiers are imported from, or nil for the
// root path.
func importer(from string) (*module.Module, error) {
	if from == "" {
		return nil, nil
	}
	p := types.FilesystemPath(from)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	abs, err := fspath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("--from %s: %w", from, err)
	}
	return &module.Module{Path: abs}, nil
}

// resolveAll resolves every specifier through c, in order.
func (s *session) resolveAll(specs []string, from *module.Module, c *module.Container) []Resolution {
	out := make([]Resolution, 0, len(specs))
	for _, raw := range specs {
		out = append(out, s.resolveOne(types.Specifier(raw), from, c))
	}
	return out
}

func (s *session) resolveOne(spec types.Specifier, from *module.Module, c *module.Container) Resolution {
	res := Resolution{Specifier: string(spec)}
	if err := spec.Validate(); err != nil {
		res.fail(stageInvalid, err)
		return res
	}

	m, err := s.resolver.Resolve(spec, from, c)
	switch {
	case err != nil:
		stage := "resolve"
		var rerr *resolver.ResolveError
		if errors.As(err, &rerr) {
			stage = rerr.Stage.String()
		}
		res.fail(stage, err)
	case m == nil:
		res.Skipped = true
	default:
		res.Path = string(m.Path)
	}
	return res
}

func (r *Resolution) fail(stage string, err error) {
	r.Stage = stage
	r.Error = err.Error()
	r.err = err
}

// actionable wraps a declined resolution with remediation hints and the
// catalog entry for its stage.
func (r Resolution) actionable() *issue.ActionableError {
	ctx := issue.NewErrorContext().WithOperation(fmt.Sprintf("resolve %q", r.Specifier))

	var rerr *resolver.ResolveError
	switch {
	case errors.Is(r.err, types.ErrInvalidSpecifier):
		ctx.WithIssue(issue.InvalidSpecifierId).
			WithSuggestion("Pass the package name as it appears in the import statement")
	case errors.Is(r.err, fs.ErrPermission):
		ctx.WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Check the read permissions of the package directory")
	case errors.As(r.err, &rerr):
		ctx.WithIssue(stageIssue(rerr.Stage)).WithSuggestions(stageSuggestions(rerr)...)
	}

	return ctx.Wrap(r.err).Build()
}

func stageIssue(stage resolver.Stage) issue.Id {
	switch stage {
	case resolver.StageParentPackage:
		return issue.ParentPackageNotFoundId
	case resolver.StagePackageLookup:
		return issue.PackageNotFoundId
	case resolver.StageEntryPoint:
		return issue.MissingEntryPointId
	case resolver.StageCandidate:
		return issue.EntryPointNotFoundId
	default:
		return 0
	}
}

func stageSuggestions(rerr *resolver.ResolveError) []string {
	switch rerr.Stage {
	case resolver.StageParentPackage:
		return []string{"Pass --from with a file inside your project, or --root with a directory holding a package.json"}
	case resolver.StagePackageLookup:
		return []string{fmt.Sprintf("Install the package: npm install %s", rerr.Specifier.PackageName())}
	case resolver.StageEntryPoint:
		return []string{fmt.Sprintf(`Check that %s declares a string "jsnext:main" field`, rerr.Path)}
	case resolver.StageCandidate:
		return []string{"Reinstall the package; the file its \"jsnext:main\" names is missing"}
	default:
		return nil
	}
}

// unresolvedError returns an ExitError when any resolution failed.
func unresolvedError(results []Resolution) error {
	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return &ExitError{
		Code: types.ExitUnresolved,
		Err:  fmt.Errorf("%d of %d specifier(s) could not be resolved", failed, len(results)),
	}
}

type textOptions struct {
	explain      bool
	verbose      bool
	glamourStyle string
}

func (s *session) textOptions(explain, verbose bool) textOptions {
	return textOptions{
		explain:      explain,
		verbose:      verbose || s.cfg.UI.Verbose,
		glamourStyle: s.cfg.UI.ColorScheme.GlamourStyle(),
	}
}

func writeText(w io.Writer, rep Report, opts textOptions) {
	for _, r := range rep.Resolutions {
		switch {
		case r.Failed():
			fmt.Fprintf(w, "%s %s %s\n", ErrorStyle.Render("✗"), r.Specifier, stageStyle.Render("("+r.Stage+")"))
			ae := r.actionable()
			fmt.Fprintln(w, indent(ae.Format(opts.verbose), "  "))
			if opts.explain {
				if rendered, err := ae.Explain(opts.glamourStyle); err == nil && rendered != "" {
					fmt.Fprint(w, rendered)
				}
			}
		case r.Skipped:
			fmt.Fprintf(w, "%s %s %s\n", SubtitleStyle.Render("-"), r.Specifier, VerboseStyle.Render("(relative, not resolved)"))
		default:
			fmt.Fprintf(w, "%s %s → %s\n", SuccessStyle.Render("✓"), r.Specifier, CmdStyle.Render(r.Path))
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func writeReport(w io.Writer, format outputFormat, rep Report) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case outputTOML:
		return toml.NewEncoder(w).Encode(rep)
	default:
		return format.Validate()
	}
}
