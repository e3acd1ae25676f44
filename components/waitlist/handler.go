// components/waitlist/handler.go
//
// HTTP surface of the waitlist.
//
// Context
// -------
//   GET  /                 landing page (hero, counter, form, features)
//   POST /waitlist         form-encoded or JSON submission
//   GET  /waitlist/count   {"count": N}, the displayed value
//   GET  /waitlist/token   {"csrfToken", "renderTs"} for API clients
//   GET  /static/*         embedded CSS and images
//
// Every rendered form carries a fresh guard stamp.  Its token doubles as
// the key of a signup.Form kept in an LRU, so concurrent POSTs of the same
// rendered form share one in-flight flag.  A POST that finds the flag held
// gets 429 and never reaches the store.
//
// Outcome → status
// ----------------
//   accepted  201 (JSON) or 200 (HTML)
//   invalid   422   (field errors and guard failures)
//   duplicate 409
//   failed    503
//   ignored   429   (also used by the rate limiter)
//
// Notes
// -----
// • Internal error text never reaches the client.
// • Oxford commas, two spaces after periods.
package waitlist

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/waitlist/internal/cache"
	"github.com/yanizio/waitlist/internal/form"
	"github.com/yanizio/waitlist/internal/head"
	"github.com/yanizio/waitlist/internal/logger"
	"github.com/yanizio/waitlist/internal/middleware"
	"github.com/yanizio/waitlist/internal/requestinfo"
	"github.com/yanizio/waitlist/internal/signup"
	"github.com/yanizio/waitlist/internal/view"
)

// maxBody caps a submission body.
const maxBody = 16 << 10

// Deps are the collaborators a Handler needs.
type Deps struct {
	Store       signup.Store
	Counter     signup.Counter // may be nil; the page then shows CounterBase
	Guard       *form.Guard
	Limiter     *middleware.RateLimiter // may be nil
	Log         *zap.SugaredLogger
	ProductName string
	CounterBase int
	FormCache   int
	Now         func() time.Time
}

// Handler serves the waitlist routes.
type Handler struct {
	coord   *signup.Coordinator
	counter signup.Counter
	guard   *form.Guard
	limiter *middleware.RateLimiter
	forms   *cache.LRU[string, *signup.Form]
	view    *view.Renderer
	assets  *view.Assets
	log     *zap.SugaredLogger
	product string
	base    int
	now     func() time.Time
}

// NewHandler validates deps and prepares templates and assets.
func NewHandler(d Deps) (*Handler, error) {
	if d.Store == nil || d.Guard == nil {
		return nil, errors.New("waitlist: store and guard are required")
	}
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.FormCache < 1 {
		d.FormCache = 4096
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.ProductName == "" {
		d.ProductName = "Kallio"
	}

	assets, err := view.NewAssets(static(), "/static/")
	if err != nil {
		return nil, err
	}

	h := &Handler{
		coord:   signup.NewCoordinator(d.Store),
		counter: d.Counter,
		guard:   d.Guard,
		limiter: d.Limiter,
		forms:   cache.New[string, *signup.Form](d.FormCache),
		assets:  assets,
		log:     d.Log.Named("waitlist"),
		product: d.ProductName,
		base:    d.CounterBase,
		now:     d.Now,
	}
	h.view = view.New(templates(), view.CacheDefault, funcMap(assets))
	return h, nil
}

// Routes builds the router mounted at “/”.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleIndex)
	r.Route("/waitlist", func(wr chi.Router) {
		post := http.Handler(http.HandlerFunc(h.handleSubmit))
		if h.limiter != nil {
			post = h.limiter.Middleware(post)
		}
		wr.Method(http.MethodPost, "/", post)
		wr.Get("/count", h.handleCount)
		wr.Get("/token", h.handleToken)
	})
	r.Handle("/static/*", h.assets.Handler())
	return r
}

// OnLimited answers a rate-limited submission in the caller's format.
func (h *Handler) OnLimited(w http.ResponseWriter, r *http.Request) {
	n := signup.Notice{
		Kind:    signup.KindFailure,
		Title:   "Slow down",
		Message: "Too many attempts.  Please wait a moment and try again.",
	}
	raw, _ := readRaw(r)
	h.respond(w, r, http.StatusTooManyRequests, signup.OutcomeIgnored, &n, raw)
}

/*──────────────────────────── GET / ───────────────────────────────────────*/

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, nil, signup.Fields{})
}

/*──────────────────────────── POST /waitlist ──────────────────────────────*/

// submission is the wire shape of POST /waitlist.
type submission struct {
	signup.Fields
	CSRFToken string `json:"csrfToken"`
	RenderTS  string `json:"renderTs"`
}

// UnmarshalJSON accepts renderTs as a number or a string.
func (s *submission) UnmarshalJSON(b []byte) error {
	var wire struct {
		signup.Fields
		CSRFToken string          `json:"csrfToken"`
		RenderTS  json.RawMessage `json:"renderTs"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	s.Fields, s.CSRFToken = wire.Fields, wire.CSRFToken
	s.RenderTS = strings.Trim(string(wire.RenderTS), `"`)
	if s.RenderTS == "null" {
		s.RenderTS = ""
	}
	return nil
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := h.requestLogger(r)
	r = r.WithContext(ctx)

	sub, err := readSubmission(w, r)
	if err != nil {
		logger.FromContext(ctx).Debugw("unreadable submission", "err", err)
		http.Error(w, "Malformed request.", http.StatusBadRequest)
		return
	}

	if msg := h.guard.Check(sub.CSRFToken, sub.RenderTS); msg != "" {
		n := signup.ValidationNotice([]signup.FieldError{{Rule: "guard", Message: msg}})
		logger.FromContext(ctx).Infow("waitlist guard rejected", "reason", msg)
		h.respond(w, r, http.StatusUnprocessableEntity, signup.OutcomeInvalid, &n, sub.Fields)
		return
	}

	f, _ := h.forms.GetOrAdd(sub.CSRFToken, signup.NewForm)
	if f.Submitting() {
		h.respond(w, r, http.StatusTooManyRequests, signup.OutcomeIgnored, nil, sub.Fields)
		return
	}
	f.Replace(sub.Fields)

	var notice *signup.Notice
	outcome := h.coord.Submit(ctx, f, signup.NotifierFunc(func(n signup.Notice) { notice = &n }))

	// Echo what this request posted.  The shared Form may already hold
	// another request's values for the same token.
	fields := sub.Fields
	if outcome == signup.OutcomeAccepted {
		fields = signup.Fields{}
		if inv, ok := h.counter.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}
	h.respond(w, r, statusFor(outcome, wantsJSON(r)), outcome, notice, fields)
}

func statusFor(o signup.Outcome, jsonReq bool) int {
	switch o {
	case signup.OutcomeAccepted:
		if jsonReq {
			return http.StatusCreated
		}
		return http.StatusOK
	case signup.OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case signup.OutcomeDuplicate:
		return http.StatusConflict
	case signup.OutcomeFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusTooManyRequests
	}
}

// submitResponse is the JSON reply to POST /waitlist.
type submitResponse struct {
	Outcome signup.Outcome `json:"outcome"`
	Notice  *signup.Notice `json:"notice,omitempty"`
	Fields  signup.Fields  `json:"fields"`
}

// respond writes JSON or re-renders the page, keeping fields on failure.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int,
	o signup.Outcome, n *signup.Notice, fields signup.Fields) {
	if wantsJSON(r) {
		writeJSON(w, status, submitResponse{Outcome: o, Notice: n, Fields: fields})
		return
	}
	h.renderPage(w, r, status, n, fields)
}

/*──────────────────────────── JSON endpoints ──────────────────────────────*/

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, map[string]int{"count": h.displayCount(r)})
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	stamp, err := h.guard.Issue()
	if err != nil {
		h.log.Errorw("issue form stamp", "err", err)
		http.Error(w, "Service unavailable.", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stamp)
}

/*──────────────────────────── rendering ───────────────────────────────────*/

type pageData struct {
	Head       *head.Builder
	Product    string
	Count      int
	Stamp      form.Stamp
	Fields     signup.Fields
	Notice     *signup.Notice
	Errors     map[string]string
	FormError  string
	Categories []signup.Category
	Features   []Feature
	Commands   []string
	Year       int
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int,
	n *signup.Notice, fields signup.Fields) {
	stamp, err := h.guard.Issue()
	if err != nil {
		h.log.Errorw("issue form stamp", "err", err)
		http.Error(w, "Service unavailable.", http.StatusServiceUnavailable)
		return
	}

	data := pageData{
		Head:       h.head(r),
		Product:    h.product,
		Count:      h.displayCount(r),
		Stamp:      stamp,
		Fields:     fields,
		Notice:     n,
		Errors:     map[string]string{},
		Categories: signup.Categories,
		Features:   features,
		Commands:   commands,
		Year:       h.now().Year(),
	}
	if n != nil {
		for _, fe := range n.Fields {
			if fe.Field == "" {
				data.FormError = fe.Message
				continue
			}
			data.Errors[string(fe.Field)] = fe.Message
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := h.view.Render(w, status, "index", data); err != nil {
		h.log.Errorw("render landing page", "err", err)
		http.Error(w, "Internal error.", http.StatusInternalServerError)
	}
}

func (h *Handler) head(r *http.Request) *head.Builder {
	b := head.New()
	b.SetTitle(h.product + " | AI Video Editing, Redefined")
	desc := "Just tell us what you want. " + h.product + " understands your vision and edits videos like a pro."
	b.Meta("description", desc)
	b.Meta("viewport", "width=device-width, initial-scale=1")
	b.OpenGraph("title", h.product+" waitlist")
	b.OpenGraph("description", desc)
	b.OpenGraph("type", "website")
	b.Stylesheet(h.assets.URL("site.css"))
	if r.Host != "" {
		b.Canonical(scheme(r) + "://" + r.Host + "/")
	}
	_ = b.JSONLD(map[string]string{
		"@context":    "https://schema.org",
		"@type":       "SoftwareApplication",
		"name":        h.product,
		"description": desc,
	})
	return b
}

func (h *Handler) displayCount(r *http.Request) int {
	return signup.DisplayCount(r.Context(), h.counter, h.base)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// requestLogger derives a request-scoped logger carrying the request id
// and client attributes.
func (h *Handler) requestLogger(r *http.Request) context.Context {
	l := h.log.With("request_id", chimw.GetReqID(r.Context()))
	if ri := requestinfo.FromContext(r.Context()); ri != nil {
		l = l.With(ri.LogFields()...)
	}
	return logger.WithContext(r.Context(), l)
}

func wantsJSON(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func readSubmission(w http.ResponseWriter, r *http.Request) (submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var s submission
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&s); err != nil {
			return submission{}, err
		}
		return s, nil
	}

	if err := r.ParseForm(); err != nil {
		return submission{}, err
	}
	return submission{
		Fields:    formFields(r),
		CSRFToken: r.PostForm.Get("csrf_token"),
		RenderTS:  r.PostForm.Get("render_ts"),
	}, nil
}

func formFields(r *http.Request) signup.Fields {
	return signup.Fields{
		FirstName: r.PostForm.Get(string(signup.FieldFirstName)),
		LastName:  r.PostForm.Get(string(signup.FieldLastName)),
		Email:     r.PostForm.Get(string(signup.FieldEmail)),
		Category:  r.PostForm.Get(string(signup.FieldCategory)),
	}
}

// readRaw best-effort extracts fields from a form body so a rate-limited
// page keeps what the visitor typed.
func readRaw(r *http.Request) (signup.Fields, error) {
	if wantsJSON(r) {
		return signup.Fields{}, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		return signup.Fields{}, err
	}
	return formFields(r), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func scheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}

// thousands formats n with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
