package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe DRAWING_ID [flags]",
		Short: "Show a drawing with its versions and comments",
		Long: `Show a drawing with its full version history, newest first, and its comments.

Examples:
  # Describe a drawing
  drawings describe 3f1c2a7e-...

  # Describe a drawing as YAML
  drawings describe 3f1c2a7e-... -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: describeDrawing,
	}
	cmd.Flags().StringP("output", "o", "", "Output format: yaml")
	return cmd
}

func describeDrawing(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "" && output != "yaml" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	if err := ws.store.Select(args[0]); err != nil {
		return err
	}
	d, _ := ws.store.Selected()

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return printJSON(out, map[string]any{
			"result": 1,
			"value":  d,
		})
	case output == "yaml":
		yamlBytes, err := yaml.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to format YAML output: %w", err)
		}
		fmt.Fprint(out, string(yamlBytes))
	default:
		printDrawing(out, d)
	}
	return nil
}
