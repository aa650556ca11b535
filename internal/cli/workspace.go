package cli

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/planroom/drawings/internal/common/httpclient"
	"github.com/planroom/drawings/internal/common/logtrace"
	"github.com/planroom/drawings/internal/common/uuid"
	"github.com/planroom/drawings/internal/drawings/identity"
	"github.com/planroom/drawings/internal/drawings/model"
	"github.com/planroom/drawings/internal/drawings/service"
	"github.com/planroom/drawings/internal/drawings/store"
)

// workspace is what a command needs to talk to the services.
type workspace struct {
	ctx      context.Context
	store    *store.Store
	drawings *service.DrawingClient
	user     identity.Provider
}

// currentUser resolves the user from the session token, falling back to the
// configured user ID. An unresolvable user leaves the CLI read-only.
func currentUser(cfg *Config) identity.Provider {
	if cfg.Token != "" {
		p, err := identity.FromToken(cfg.Token)
		if err == nil {
			return p
		}
		log.Warn().Err(err).Msg("ignoring session token")
	}
	return identity.NewStatic(model.User{ID: cfg.UserID, FullName: cfg.UserName})
}

// newWorkspace builds clients and an empty store from the loaded config.
func newWorkspace(cmd *cobra.Command) *workspace {
	cfg := GetConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logtrace.WithRequestID(ctx, uuid.NewString())

	drawings := service.NewDrawingClient(httpclient.NewClient(cfg))
	uploads := service.NewUploadClient(httpclient.NewClient(uploadConfig{cfg}))
	user := currentUser(cfg)

	return &workspace{
		ctx:      ctx,
		store:    store.New(drawings, uploads, user),
		drawings: drawings,
		user:     user,
	}
}

// openWorkspace is newWorkspace with the drawing list loaded.
func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	ws := newWorkspace(cmd)
	if err := ws.store.Load(ws.ctx); err != nil {
		return nil, err
	}
	return ws, nil
}
