package component

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/waitlist/internal/config"
	"github.com/yanizio/waitlist/internal/form"
)

// Env exposes process-wide resources to Components during Init.
type Env struct {
	Ctx    context.Context // cancelled on shutdown
	Config *config.Config
	DB     *sqlx.DB
	Log    *zap.SugaredLogger
	Guard  *form.Guard
}
