package cli

import (
	"github.com/spf13/cobra"

	"github.com/planroom/drawings/internal/drawings/filter"
	"github.com/planroom/drawings/internal/drawings/model"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [flags]",
		Short: "List drawings",
		Long: `List drawings in the order the service returns them, optionally filtered by
discipline and by a search term matched against the code or title.

Disciplines: ARQ (architecture), EST (structural), ELE (electrical),
SAN (plumbing), MEC (mechanical), CIV (civil), OTR (other).

Examples:
  # List every drawing
  drawings list

  # Structural drawings only
  drawings list -d EST

  # Drawings whose code or title contains "norte", as JSON
  drawings list -s norte -j`,
		Args: cobra.NoArgs,
		RunE: listDrawings,
	}
	cmd.Flags().StringP("search", "s", "", "Case-insensitive text to match in code or title")
	cmd.Flags().StringP("discipline", "d", string(model.DisciplineAll), "Discipline code or name, or \"all\"")
	return cmd
}

func listDrawings(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	disciplineFlag, _ := cmd.Flags().GetString("discipline")
	discipline, err := model.ParseDiscipline(disciplineFlag)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	drawings := ws.store.Filtered(filter.State{SearchTerm: search, Discipline: discipline})

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"result": 1,
			"value":  drawings,
		})
	}
	printDrawingList(cmd.OutOrStdout(), drawings)
	return nil
}
