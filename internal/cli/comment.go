package cli

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"
)

func newCommentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment DRAWING_ID TEXT...",
		Short: "Add a comment to a drawing",
		Long: `Add a comment to a drawing. The text is posted as written; blank comments are
rejected. Use --strip-html when pasting rich text to drop its markup first.

Examples:
  drawings comment 3f1c2a7e-... "Revisar cotas del eje 4"
  drawings comment 3f1c2a7e-... --strip-html "<p>Ver <b>detalle 3</b></p>"`,
		Args: cobra.MinimumNArgs(2),
		RunE: addComment,
	}
	cmd.Flags().String("author", "", "Author user ID (defaults to the signed-in user)")
	cmd.Flags().Bool("strip-html", false, "Remove HTML markup from the text before posting")
	return cmd
}

// stripHTML reduces pasted HTML to its text.
func stripHTML(s string) string {
	return html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s))
}

func addComment(cmd *cobra.Command, args []string) error {
	author, _ := cmd.Flags().GetString("author")
	strip, _ := cmd.Flags().GetBool("strip-html")
	content := strings.Join(args[1:], " ")
	if strip {
		content = stripHTML(content)
	}

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	if _, err := ws.store.AppendComment(ws.ctx, args[0], content, author); err != nil {
		return err
	}
	if err := ws.store.Select(args[0]); err != nil {
		return err
	}
	d, _ := ws.store.Selected()

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"result":   1,
			"comments": d.Comments,
		})
	}
	okLabel.Fprintf(out, "Comment added to %s (%d comments)\n", d.Code, len(d.Comments))
	return nil
}
