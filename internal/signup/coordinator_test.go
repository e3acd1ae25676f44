// internal/signup/coordinator_test.go
//
// Unit-tests for Coordinator.Submit.
//
// Context
// -------
// fakeStore records every Insert and returns a scripted error (or panics).
// recorder collects notices so each test can assert "exactly one".
//
// Run: go test ./internal/signup -v

package signup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu    sync.Mutex
	calls []Request
	err   error
	panic any

	entered chan struct{} // closed on first Insert when non-nil
	release chan struct{} // Insert blocks until closed when non-nil
	once    sync.Once
}

func (s *fakeStore) Insert(_ context.Context, req Request) error {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()

	if s.entered != nil {
		s.once.Do(func() { close(s.entered) })
	}
	if s.release != nil {
		<-s.release
	}
	if s.panic != nil {
		panic(s.panic)
	}
	return s.err
}

func (s *fakeStore) Calls() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.calls...)
}

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) only(t *testing.T) Notice {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) != 1 {
		t.Fatalf("expected exactly one notice, got %d: %#v", len(r.notices), r.notices)
	}
	return r.notices[0]
}

func filledForm() *Form {
	f := NewForm()
	f.Replace(Fields{FirstName: "John", LastName: "Doe", Email: "JOHN@Example.com", Category: "agency"})
	return f
}

func TestSubmit_SuccessResetsFormAndPersistsNormalized(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	f := filledForm()

	got := NewCoordinator(store).Submit(context.Background(), f, rec)

	if got != OutcomeAccepted {
		t.Fatalf("outcome = %s, want accepted", got)
	}
	calls := store.Calls()
	if len(calls) != 1 {
		t.Fatalf("store calls = %d, want 1", len(calls))
	}
	want := Request{FirstName: "John", LastName: "Doe", Email: "john@example.com", Category: CategoryAgency}
	if calls[0] != want {
		t.Fatalf("persisted %#v, want %#v", calls[0], want)
	}
	if n := rec.only(t); n.Kind != KindSuccess {
		t.Fatalf("notice kind = %s, want success", n.Kind)
	}
	if !f.Fields().IsZero() {
		t.Fatalf("fields not reset: %#v", f.Fields())
	}
	if f.Submitting() {
		t.Fatal("in-flight flag still set")
	}
}

func TestSubmit_ValidationFailureSkipsStore(t *testing.T) {
	store := &fakeStore{}
	rec := &recorder{}
	f := NewForm()
	f.Set(FieldFirstName, "John")
	f.Set(FieldEmail, "   ")

	got := NewCoordinator(store).Submit(context.Background(), f, rec)

	if got != OutcomeInvalid {
		t.Fatalf("outcome = %s, want invalid", got)
	}
	if len(store.Calls()) != 0 {
		t.Fatal("store called for invalid input")
	}
	n := rec.only(t)
	if n.Kind != KindValidation || len(n.Fields) != 3 {
		t.Fatalf("notice = %#v", n)
	}
	if f.Fields().FirstName != "John" {
		t.Fatal("fields should be retained after validation failure")
	}
}

func TestSubmit_DuplicateKeepsFields(t *testing.T) {
	store := &fakeStore{err: &BackendError{Code: CodeUniqueViolation, Err: errors.New("duplicate key")}}
	rec := &recorder{}
	f := filledForm()
	before := f.Fields()

	got := NewCoordinator(store).Submit(context.Background(), f, rec)

	if got != OutcomeDuplicate {
		t.Fatalf("outcome = %s, want duplicate", got)
	}
	if n := rec.only(t); n.Kind != KindDuplicate {
		t.Fatalf("notice kind = %s, want duplicate", n.Kind)
	}
	if f.Fields() != before {
		t.Fatalf("fields changed: %#v", f.Fields())
	}
	if f.Submitting() {
		t.Fatal("in-flight flag still set")
	}
	if len(store.Calls()) != 1 {
		t.Fatal("duplicate must not be retried")
	}
}

func TestSubmit_GenericFailures(t *testing.T) {
	cases := map[string]*fakeStore{
		"plain error":     {err: errors.New("connection refused")},
		"other sqlstate":  {err: &BackendError{Code: "23503", Err: errors.New("fk")}},
		"no discriminant": {err: &BackendError{Err: errors.New("timeout")}},
		"panic":           {panic: "driver exploded"},
	}

	for name, store := range cases {
		t.Run(name, func(t *testing.T) {
			rec := &recorder{}
			f := filledForm()
			before := f.Fields()

			got := NewCoordinator(store).Submit(context.Background(), f, rec)

			if got != OutcomeFailed {
				t.Fatalf("outcome = %s, want failed", got)
			}
			if n := rec.only(t); n.Kind != KindFailure {
				t.Fatalf("notice kind = %s, want failure", n.Kind)
			}
			if f.Fields() != before {
				t.Fatal("fields should be retained")
			}
			if f.Submitting() {
				t.Fatal("in-flight flag still set")
			}
			if len(store.Calls()) != 1 {
				t.Fatalf("store calls = %d, want 1", len(store.Calls()))
			}
		})
	}
}

func TestSubmit_ReentrantSubmitIgnored(t *testing.T) {
	store := &fakeStore{entered: make(chan struct{}), release: make(chan struct{})}
	first := &recorder{}
	second := &recorder{}
	f := filledForm()
	c := NewCoordinator(store)

	done := make(chan Outcome, 1)
	go func() { done <- c.Submit(context.Background(), f, first) }()

	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit never reached the store")
	}
	if !f.Submitting() {
		t.Fatal("flag should be set while insert is pending")
	}

	if got := c.Submit(context.Background(), f, second); got != OutcomeIgnored {
		t.Fatalf("second outcome = %s, want ignored", got)
	}
	if len(second.notices) != 0 {
		t.Fatalf("ignored submit produced notices: %#v", second.notices)
	}

	close(store.release)
	if got := <-done; got != OutcomeAccepted {
		t.Fatalf("first outcome = %s, want accepted", got)
	}
	if len(store.Calls()) != 1 {
		t.Fatalf("store calls = %d, want 1", len(store.Calls()))
	}
	first.only(t)
	if f.Submitting() {
		t.Fatal("in-flight flag still set")
	}
}

func TestSubmit_FormReusableAfterFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	c := NewCoordinator(store)
	f := filledForm()

	c.Submit(context.Background(), f, &recorder{})
	store.err = nil
	if got := c.Submit(context.Background(), f, &recorder{}); got != OutcomeAccepted {
		t.Fatalf("retry by user = %s, want accepted", got)
	}
	if len(store.Calls()) != 2 {
		t.Fatalf("store calls = %d, want 2", len(store.Calls()))
	}
}

func TestIsDuplicate(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), &BackendError{Code: CodeUniqueViolation, Err: errors.New("dup")})
	if !IsDuplicate(wrapped) {
		t.Fatal("wrapped BackendError should be detected")
	}
	if IsDuplicate(errors.New("23505")) {
		t.Fatal("bare error text is not a discriminator")
	}
	if IsDuplicate(nil) {
		t.Fatal("nil is not a duplicate")
	}
}
