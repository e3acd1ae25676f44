// components/waitlist/waitlist.go
//
// Waitlist component: landing page and signup endpoint.
//
//------------------------------------------------------------------------------

package waitlist

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/waitlist/internal/component"
	"github.com/yanizio/waitlist/internal/middleware"
	"github.com/yanizio/waitlist/internal/store"
)

// Compile-time assertions.
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component wires the waitlist handler into the router.
type Component struct {
	h *Handler
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "waitlist" }

// Pattern mounts the component at the site root.
func (c *Component) Pattern() string { return "/" }

// Init builds the SQL store, cached counter, and rate limiter.
func (c *Component) Init(env component.Env) error {
	if env.DB == nil || env.Config == nil || env.Guard == nil {
		return errors.New("waitlist needs a database, config, and form guard")
	}
	wl := env.Config.Waitlist
	rl := env.Config.Security.RateLimit

	signups := store.NewSignups(env.DB)

	var h *Handler
	limiter := middleware.NewRateLimiter(env.Ctx, middleware.RateLimitConfig{
		RPS:   rl.RPS,
		Burst: rl.Burst,
		OnLimited: func(w http.ResponseWriter, r *http.Request) {
			h.OnLimited(w, r)
		},
	})

	h, err := NewHandler(Deps{
		Store:       signups,
		Counter:     store.NewCachedCounter(signups, wl.CountTTL),
		Guard:       env.Guard,
		Limiter:     limiter,
		Log:         env.Log,
		ProductName: wl.ProductName,
		CounterBase: wl.CounterBase,
		FormCache:   wl.FormCacheSize,
	})
	if err != nil {
		return err
	}
	c.h = h
	return nil
}

// Routes returns the handler's router.  Init must run first.
func (c *Component) Routes() chi.Router {
	return c.h.Routes()
}

// Register component at program start.
func init() { component.Register(&Component{}) }
