package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planroom/drawings/internal/drawings/model"
	"github.com/planroom/drawings/internal/drawings/service"
	"github.com/planroom/drawings/internal/drawings/store"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create -f FILENAME --code CODE --title TITLE [flags]",
		Short: "Upload a file as a new drawing",
		Long: `Upload a file and register it as version 1 of a new drawing. The new drawing
is listed first.

Examples:
  # Create an architecture drawing
  drawings create -f planta-baja.pdf --code A-101 --title "Planta baja" --discipline ARQ

  # Create a drawing in review
  drawings create -f losa.pdf --code E-201 --title "Losa nivel 2" --discipline structural --status "in review"`,
		Args: cobra.NoArgs,
		RunE: createDrawing,
	}
	cmd.Flags().StringP("filename", "f", "", "File to upload")
	cmd.Flags().String("code", "", "Drawing code, e.g. A-101")
	cmd.Flags().String("title", "", "Drawing title")
	cmd.Flags().StringP("discipline", "d", string(model.DisciplineOther), "Discipline code or name; unknown values mean other")
	cmd.Flags().String("status", "", "Initial status")
	cmd.MarkFlagRequired("filename")
	return cmd
}

// openUpload opens filename for streaming to the upload service.
func openUpload(filename string) (service.File, func() error, error) {
	f, err := os.Open(filename)
	if err != nil {
		return service.File{}, nil, fmt.Errorf("unable to open file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return service.File{}, nil, fmt.Errorf("unable to open file: %w", err)
	}
	if st.IsDir() {
		f.Close()
		return service.File{}, nil, fmt.Errorf("%s is a directory", filename)
	}
	return service.File{Name: filepath.Base(filename), Content: f}, f.Close, nil
}

func createDrawing(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("filename")
	code, _ := cmd.Flags().GetString("code")
	title, _ := cmd.Flags().GetString("title")
	discipline, _ := cmd.Flags().GetString("discipline")
	status, _ := cmd.Flags().GetString("status")

	desc := model.Descriptor{
		Code:       code,
		Title:      title,
		Discipline: model.ParseDisciplineLenient(discipline),
		Status:     status,
	}.Normalize()
	if err := desc.Validate(); err != nil {
		return store.ErrInvalidDescriptor.Msg(err.Error())
	}

	file, closeFile, err := openUpload(filename)
	if err != nil {
		return err
	}
	defer closeFile()

	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	created, err := ws.store.CreateDrawing(ws.ctx, desc, file)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"result":  1,
			"created": created,
		})
	}
	okLabel.Fprintf(out, "Created %s (%s)\n", created.Code, created.ID)
	printDrawingList(out, ws.store.Drawings())
	return nil
}
