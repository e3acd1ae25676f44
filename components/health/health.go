// components/health/health.go
//
// Health component: liveness and database readiness for load balancers.
//
//   GET /healthz       {"status":"ok"} when the database answers a ping,
//                      otherwise 503 with {"status":"unavailable"}
//   GET /healthz/live  {"status":"ok"} while the process serves requests
//
// The ping is bounded by pingTimeout so a stuck pool never stalls the
// check.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/waitlist/internal/component"
)

const pingTimeout = 2 * time.Second

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp reports process and database health.
type Comp struct {
	db  *sqlx.DB
	log *zap.SugaredLogger
}

func (c *Comp) Name() string    { return "health" }
func (c *Comp) Pattern() string { return "/healthz" }

func (c *Comp) Init(env component.Env) error {
	if env.DB == nil {
		return errors.New("health needs a database")
	}
	c.db = env.DB
	c.log = env.Log
	if c.log == nil {
		c.log = zap.NewNop().Sugar()
	}
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.ready)
	r.Get("/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	return r
}

func (c *Comp) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		c.log.Warnw("readiness ping failed", "err", err)
		writeStatus(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	writeStatus(w, http.StatusOK, "ok")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func init() { component.Register(&Comp{}) }
