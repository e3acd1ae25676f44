// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits after chi's RealIP and before the component routes.  For
every request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Extracts the client IP (see ClientIP).
  3. Performs a GeoLite2 lookup when a database is configured.
  4. Stores a `*RequestInfo` in `request.Context`, so the signup handler
     can log country, device, and bot attributes without reparsing.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enricher attaches RequestInfo to requests.  A nil geo reader is allowed.
type Enricher struct {
	geo *geoip2.Reader
	log *zap.SugaredLogger
}

// NewEnricher returns an Enricher backed by geo (may be nil).
func NewEnricher(geo *geoip2.Reader, log *zap.SugaredLogger) *Enricher {
	return &Enricher{geo: geo, log: log}
}

// Middleware wraps next, attaches *RequestInfo, and forwards.
func (e *Enricher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			UA:        ParseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(e.geo, ClientIP(r)),
			Timestamp: time.Now().UTC(),
		}

		if e.log != nil {
			e.log.Debugw("request info",
				"country", info.Geo.CountryISO,
				"browser", info.UA.Browser,
				"device", info.UA.Device,
				"bot", info.UA.IsBot,
				"path", r.URL.Path,
			)
		}

		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), info)))
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// ClientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func ClientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
