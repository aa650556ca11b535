package cli

import (
	"github.com/spf13/cobra"
)

func newAddVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-version DRAWING_ID -f FILENAME",
		Short: "Upload a file as the next version of a drawing",
		Long: `Upload a file and append it to a drawing's history. The new version becomes
the current one.

Examples:
  drawings add-version 3f1c2a7e-... -f planta-baja-r2.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: addVersion,
	}
	cmd.Flags().StringP("filename", "f", "", "File to upload")
	cmd.MarkFlagRequired("filename")
	return cmd
}

func addVersion(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("filename")
	file, closeFile, err := openUpload(filename)
	if err != nil {
		return err
	}
	defer closeFile()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	updated, err := ws.store.AppendVersion(ws.ctx, args[0], file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"result":  1,
			"updated": updated,
		})
	}
	current, _ := updated.Current()
	okLabel.Fprintf(out, "Uploaded %s as v%d of %s\n", current.FileName, current.VersionNumber, updated.Code)
	return nil
}
