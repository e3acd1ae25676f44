// internal/form/guard.go
//
// Stateless CSRF token and render-timestamp guard for the signup form.
//
// Context
//   The landing page embeds two hidden inputs generated at render time:
//   `csrf_token` and `render_ts`.  On POST the guard checks both before any
//   field validation runs.  The token is stateless:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(secret, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.  Makes every rendered form unique, which
//      lets the token double as the form-instance key.
//   •  unixMicro – microseconds since Unix epoch, 8 bytes, big-endian.
//   •  HMAC – keyed with the configured secret.  Verifies authenticity.
//
//   The render timestamp rejects bots that post faster than a human could
//   fill the form, and stale pages left open for too long.
//
// Workflow
//   •  Issue()          → Stamp for the renderer or the token endpoint.
//   •  Check(tok, ts)   → "" on success, user-visible message otherwise.
//
//------------------------------------------------------------------------------

package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	nonceBytes = 16
	tokenBytes = nonceBytes + 8 + sha256.Size // nonce + ts + sig
	maxSkew    = time.Minute

	// DefaultMinFill is the shortest plausible human fill time.
	DefaultMinFill = 2 * time.Second
	// DefaultMaxAge is how long a rendered form stays valid.
	DefaultMaxAge = 30 * time.Minute
)

// User-visible guard messages.
const (
	MsgTokenInvalid     = "Security token invalid.  Please refresh and try again."
	MsgTimestampMissing = "Timestamp missing.  Please reload the page."
	MsgTimestampBad     = "Bad timestamp.  Please retry."
	MsgTooFast          = "Form submitted too quickly.  Please enter the fields manually."
	MsgExpired          = "Form expired.  Please reload and submit again."
)

// Stamp is what a rendered form carries in its hidden inputs.
type Stamp struct {
	Token      string `json:"csrfToken"`
	RenderedAt int64  `json:"renderTs"` // unix microseconds
}

// Guard issues and checks form stamps.
type Guard struct {
	secret  []byte
	minFill time.Duration
	maxAge  time.Duration
	now     func() time.Time
}

// GuardOptions tunes a Guard.  Zero durations take the defaults.
type GuardOptions struct {
	Secret  string // base64url (raw or padded), ≥ 32 bytes decoded
	MinFill time.Duration
	MaxAge  time.Duration
	Now     func() time.Time // defaults to time.Now
}

// NewGuard builds a Guard.  When opts.Secret is empty or unusable a random
// key is generated and a warning is logged; tokens then reset on restart.
func NewGuard(opts GuardOptions, log *zap.SugaredLogger) (*Guard, error) {
	g := &Guard{
		minFill: opts.MinFill,
		maxAge:  opts.MaxAge,
		now:     opts.Now,
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.minFill <= 0 {
		g.minFill = DefaultMinFill
	}
	if g.maxAge <= 0 {
		g.maxAge = DefaultMaxAge
	}

	if key, ok := decodeSecret(opts.Secret); ok {
		g.secret = key
		return g, nil
	}

	g.secret = make([]byte, 32)
	if _, err := rand.Read(g.secret); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	if log != nil {
		log.Warnw("security.csrf_key not set or too short, using random key")
	}
	return g, nil
}

func decodeSecret(s string) ([]byte, bool) {
	if s == "" {
		return nil, false
	}
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.URLEncoding, base64.StdEncoding} {
		if b, err := enc.DecodeString(s); err == nil && len(b) >= 32 {
			return b, true
		}
	}
	return nil, false
}

// Issue creates a new stamp.  Call once per form render.
func (g *Guard) Issue() (Stamp, error) {
	now := g.now()

	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return Stamp{}, err
	}

	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(now.UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, g.sign(nonce, ts)...)

	return Stamp{
		Token:      base64.RawURLEncoding.EncodeToString(buf),
		RenderedAt: now.UnixMicro(),
	}, nil
}

// Check validates a posted token and render timestamp.  It returns an empty
// string on success, otherwise a user-visible message.
func (g *Guard) Check(token, renderTS string) string {
	if !g.verify(token) {
		return MsgTokenInvalid
	}
	return g.checkTiming(renderTS)
}

func (g *Guard) verify(tok string) bool {
	if tok == "" {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}

	nonce := raw[:nonceBytes]
	tsBytes := raw[nonceBytes : nonceBytes+8]
	sig := raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(tsBytes)))
	now := g.now()
	if now.Sub(issued) > g.maxAge || issued.Sub(now) > maxSkew {
		return false
	}

	return hmac.Equal(sig, g.sign(nonce, tsBytes))
}

// checkTiming ensures the form was not submitted suspiciously fast or too late.
func (g *Guard) checkTiming(tsRaw string) string {
	if tsRaw == "" {
		return MsgTimestampMissing
	}
	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		return MsgTimestampBad
	}
	delta := g.now().Sub(time.UnixMicro(ts))
	switch {
	case delta < g.minFill:
		return MsgTooFast
	case delta > g.maxAge:
		return MsgExpired
	default:
		return ""
	}
}

func (g *Guard) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
