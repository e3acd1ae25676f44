// internal/signup/coordinator.go
//
// Waitlist signup: submission coordinator.
//
// Context
// -------
// Submit drives one attempt through a small state machine:
//
//	Idle → Validating ─ fail ─────────────────────────→ Idle  (validation notice)
//	         └ ok → Submitting ─ stored ───────────────→ Idle  (success, fields reset)
//	                           ├ BackendError 23505 ───→ Idle  (duplicate, fields kept)
//	                           └ any other error/panic → Idle  (failure, fields kept)
//
// The in-flight flag lives on the Form, is claimed with CompareAndSwap, and
// is released by a deferred call so it clears on every exit, including a
// panicking store.  A submit that finds the flag held returns
// OutcomeIgnored without touching the store or the notifier.
//
// Every other attempt produces exactly one Notice.  Nothing is retried.
//
// Notes
// -----
// • Errors never escape Submit; they become notices and log lines.
// • Oxford commas, two spaces after periods.
package signup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yanizio/waitlist/internal/logger"
	"github.com/yanizio/waitlist/internal/metrics"
)

// Outcome reports how a submit attempt ended.
type Outcome string

const (
	OutcomeIgnored   Outcome = "ignored"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
	OutcomeAccepted  Outcome = "accepted"
)

// Coordinator wires validation, persistence, and notification.  It holds
// no per-submission state and is safe for concurrent use.
type Coordinator struct {
	store Store
}

// NewCoordinator returns a Coordinator persisting through store.
func NewCoordinator(store Store) *Coordinator {
	return &Coordinator{store: store}
}

// Submit validates the form's current fields, persists them when valid,
// and reports the result to n.  See the file header for the state machine.
func (c *Coordinator) Submit(ctx context.Context, f *Form, n Notifier) Outcome {
	if f.Submitting() {
		return c.finish(ctx, OutcomeIgnored)
	}

	req, errs := Validate(f.Fields())
	if len(errs) > 0 {
		n.Notify(ValidationNotice(errs))
		return c.finish(ctx, OutcomeInvalid, "fields", failedFields(errs))
	}

	if !f.begin() {
		return c.finish(ctx, OutcomeIgnored)
	}
	defer f.end()

	err := c.persist(ctx, req)
	switch {
	case err == nil:
		f.Reset()
		n.Notify(successNotice)
		return c.finish(ctx, OutcomeAccepted, "category", req.Category, "domain", emailDomain(req.Email))

	case IsDuplicate(err):
		n.Notify(duplicateNotice)
		return c.finish(ctx, OutcomeDuplicate, "domain", emailDomain(req.Email))

	default:
		n.Notify(failureNotice)
		logger.FromContext(ctx).Errorw("waitlist signup insert failed", "err", err)
		return c.finish(ctx, OutcomeFailed)
	}
}

// persist calls the store and converts a panic into an error so the
// caller's deferred flag release always runs on a normal return path.
func (c *Coordinator) persist(ctx context.Context, req Request) (err error) {
	start := time.Now()
	metrics.SubmissionsInFlight.Inc()
	defer func() {
		metrics.SubmissionsInFlight.Dec()
		metrics.PersistDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			err = fmt.Errorf("signup store panic: %v", r)
		}
	}()
	return c.store.Insert(ctx, req)
}

// finish records the outcome and returns it.
func (c *Coordinator) finish(ctx context.Context, o Outcome, kv ...any) Outcome {
	metrics.SubmissionsTotal.WithLabelValues(string(o)).Inc()
	logger.FromContext(ctx).Infow("waitlist submit", append([]any{"outcome", o}, kv...)...)
	return o
}

func failedFields(errs []FieldError) string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, string(e.Field))
	}
	return strings.Join(names, ",")
}

// emailDomain keeps addresses out of the logs.
func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i != -1 {
		return email[i+1:]
	}
	return ""
}
