package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/canopy/internal/blueprint"
)

// LintResult holds lint findings for one blueprint.
type LintResult struct {
	Blueprint string            `json:"blueprint"`
	Clean     bool              `json:"clean"`
	Issues    []blueprint.Issue `json:"issues,omitempty"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <blueprints>",
		Short: "Lint store blueprints for structural defects",
		Long: `Lint store blueprints for structural defects.

The argument is either a directory of CUE files declaring stores under
the top-level "store" field, or a single YAML file holding one module
shape. Findings cover empty names, double-listed names, module keys
shadowing state defaults, and getter names that collide once namespaces
are flattened.

Exit codes:
  0 - all blueprints clean
  1 - lint findings reported
  2 - command error (path not found, unparseable blueprint, etc.)

Examples:
  canopy lint ./blueprints
  canopy lint ./store.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLint(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	blueprints, err := loadBlueprints(path, formatter)
	if err != nil {
		return err
	}

	results := make([]LintResult, 0, len(blueprints))
	total := 0
	for _, bp := range blueprints {
		formatter.VerboseLog("Linting blueprint: %s", bp.Name)
		issues := blueprint.Lint(bp)
		total += len(issues)
		results = append(results, LintResult{
			Blueprint: bp.Name,
			Clean:     len(issues) == 0,
			Issues:    issues,
		})
	}

	if formatter.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
		if total > 0 {
			return NewExitError(ExitFailure, fmt.Sprintf("lint failed with %d issue(s)", total))
		}
		return nil
	}

	w := formatter.Writer
	for _, res := range results {
		if res.Clean {
			fmt.Fprintf(w, "✓ %s\n", res.Blueprint)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", res.Blueprint)
		for _, issue := range res.Issues {
			fmt.Fprintf(w, "  %s\n", issue)
		}
	}
	if total > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("lint failed with %d issue(s)", total))
	}
	fmt.Fprintln(w, "All blueprints clean")
	return nil
}

// loadBlueprints resolves the path argument: YAML files load as a single
// blueprint, anything else is treated as a CUE directory.
func loadBlueprints(path string, formatter *OutputFormatter) ([]*blueprint.Blueprint, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		bp, err := blueprint.LoadYAML(path)
		if err != nil {
			return nil, loadFailure(formatter, err)
		}
		return []*blueprint.Blueprint{bp}, nil
	default:
		result, errs := blueprint.Load(path, blueprint.LoadModeCollectAll)
		if result == nil && len(errs) > 0 {
			return nil, loadFailure(formatter, errs[0])
		}
		if len(errs) > 0 {
			return nil, loadFailure(formatter, errs[0])
		}
		formatter.VerboseLog("Found %d CUE file(s)", result.FileCount)
		return result.Blueprints, nil
	}
}

func loadFailure(formatter *OutputFormatter, err error) error {
	code := blueprint.ErrCodeGeneric
	message := err.Error()
	var loadErr *blueprint.LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
		message = loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, "failed to load blueprints", err)
}
