package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/canopy/internal/blueprint"
)

// InspectResult holds the flattened registry for one blueprint.
type InspectResult struct {
	Blueprint string              `json:"blueprint"`
	Registry  *blueprint.Registry `json:"registry"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <blueprints>",
		Short: "Print the flattened dispatch registry of a blueprint",
		Long: `Print the flattened dispatch registry of a blueprint.

Lists every fully-qualified mutation, action, and getter name the
declared store would register, with namespaces applied. Accepts a CUE
directory or a single YAML file, like lint.

Examples:
  canopy inspect ./blueprints
  canopy inspect ./store.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
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

	results := make([]InspectResult, 0, len(blueprints))
	for _, bp := range blueprints {
		results = append(results, InspectResult{
			Blueprint: bp.Name,
			Registry:  blueprint.BuildRegistry(bp),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}

	w := formatter.Writer
	for _, res := range results {
		fmt.Fprintf(w, "store %s\n", res.Blueprint)
		printNames(w, "mutations", res.Registry.Mutations)
		printNames(w, "actions", res.Registry.Actions)
		printNames(w, "getters", res.Registry.Getters)
		fmt.Fprintln(w)
	}
	return nil
}

func printNames(w io.Writer, kind string, names []string) {
	fmt.Fprintf(w, "  %s (%d)\n", kind, len(names))
	for _, name := range names {
		fmt.Fprintf(w, "    %s\n", name)
	}
}
