package signup

import (
	"sync"
	"sync/atomic"
)

// Form is the state of one rendered signup form: the raw inputs and the
// in-flight flag.  The zero value is ready to use.  A Form is shared by
// every request that posts the same form instance, so all methods are
// safe for concurrent use.
type Form struct {
	mu         sync.Mutex
	fields     Fields
	submitting atomic.Bool
}

// NewForm returns an empty Form.
func NewForm() *Form { return &Form{} }

// Set stores one raw value.  Unknown fields are ignored.
func (f *Form) Set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case FieldFirstName:
		f.fields.FirstName = value
	case FieldLastName:
		f.fields.LastName = value
	case FieldEmail:
		f.fields.Email = value
	case FieldCategory:
		f.fields.Category = value
	}
}

// Replace overwrites all four raw values at once.
func (f *Form) Replace(fs Fields) {
	f.mu.Lock()
	f.fields = fs
	f.mu.Unlock()
}

// Fields returns a copy of the raw values.
func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// Reset clears every raw value.
func (f *Form) Reset() { f.Replace(Fields{}) }

// Submitting reports whether a persistence call is in flight.
func (f *Form) Submitting() bool { return f.submitting.Load() }

// begin claims the in-flight flag.  It returns false when another
// submission already holds it.
func (f *Form) begin() bool { return f.submitting.CompareAndSwap(false, true) }

// end releases the in-flight flag.
func (f *Form) end() { f.submitting.Store(false) }
