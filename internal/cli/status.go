package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planroom/drawings/internal/drawings/service"
	"github.com/planroom/drawings/internal/drawings/store"
)

// StatusResponse is the status command's JSON value.
type StatusResponse struct {
	ServerURL     string       `json:"serverURL"`
	ServerVersion string       `json:"serverVersion,omitempty"`
	ApiVersion    string       `json:"apiVersion,omitempty"`
	Compatible    bool         `json:"compatible"`
	UserID        string       `json:"userID,omitempty"`
	UserName      string       `json:"userName,omitempty"`
	Drawings      int          `json:"drawings"`
	Sync          store.Status `json:"sync"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the Drawing Service connection and API compatibility",
		Long: `Check the Drawing Service connection. Reports the server and API versions,
whether this CLI supports that API, the signed-in user and the number of drawings.

Examples:
  drawings status
  drawings status -j`,
		Args: cobra.NoArgs,
		RunE: getStatus,
	}
}

func getStatus(cmd *cobra.Command, args []string) error {
	ws := newWorkspace(cmd)
	out := cmd.OutOrStdout()

	info, err := ws.drawings.ServerVersion(ws.ctx)
	if err != nil {
		msg := "Unable to connect to server: " + errorText(err)
		if jsonOutput {
			printJSON(out, map[string]string{
				"version_cli": getCLIVersion(),
				"error":       msg,
			})
		} else {
			fmt.Fprintf(out, "drawings CLI %s\n", getCLIVersion())
			errorLabel.Fprintf(out, "Error: %s\n", msg)
		}
		return ErrAlreadyHandled
	}

	resp := StatusResponse{
		ServerURL:     GetConfig().GetServerURL(),
		ServerVersion: info.ServerVersion,
		ApiVersion:    info.APIVersion,
	}
	compatErr := service.CheckCompatible(info.APIVersion)
	resp.Compatible = compatErr == nil
	if u, ok := ws.user.CurrentUser(); ok {
		resp.UserID = u.ID
		resp.UserName = u.FullName
	}
	if resp.Compatible {
		// the count is informative only; a failed load shows in Sync
		_ = ws.store.Load(ws.ctx)
	}
	resp.Drawings = ws.store.Len()
	resp.Sync = ws.store.Status()

	if jsonOutput {
		if err := printJSON(out, map[string]any{
			"result":      1,
			"version_cli": getCLIVersion(),
			"value":       resp,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "drawings CLI %s\n", getCLIVersion())
		printStatusPretty(cmd, resp, compatErr)
	}
	if compatErr != nil {
		return ErrAlreadyHandled
	}
	return nil
}

func printStatusPretty(cmd *cobra.Command, status StatusResponse, compatErr error) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server: %s\n", status.ServerURL)
	fmt.Fprintf(out, "Server Version: %s\n", status.ServerVersion)
	if compatErr != nil {
		errorLabel.Fprintf(out, "API Version: %s (%s)\n", status.ApiVersion, errorText(compatErr))
	} else {
		okLabel.Fprintf(out, "API Version: %s (supported)\n", status.ApiVersion)
	}
	switch {
	case status.UserName != "":
		fmt.Fprintf(out, "User: %s (%s)\n", status.UserName, status.UserID)
	case status.UserID != "":
		fmt.Fprintf(out, "User: %s\n", status.UserID)
	default:
		fmt.Fprintln(out, "User: not signed in (read-only)")
	}
	fmt.Fprintf(out, "Drawings: %d\n", status.Drawings)
	if status.Sync.IsError() {
		errorLabel.Fprintf(out, "Sync: %s\n", status.Sync.Message)
	}
}
