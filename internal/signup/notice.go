package signup

// Kind classifies a Notice.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDuplicate  Kind = "duplicate"
	KindFailure    Kind = "failure"
	KindSuccess    Kind = "success"
)

// Notice is the single user-visible message produced by one submit
// attempt.
type Notice struct {
	Kind    Kind         `json:"kind"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// Destructive reports whether the UI should style the notice as an error.
func (n Notice) Destructive() bool { return n.Kind != KindSuccess }

// FieldMessage returns the error text for f, or "" when f passed.
func (n Notice) FieldMessage(f Field) string {
	for _, fe := range n.Fields {
		if fe.Field == f {
			return fe.Message
		}
	}
	return ""
}

// Notifier receives notices.  Implementations decide how to surface
// them (HTML flash, JSON body, log line).
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

var (
	successNotice = Notice{
		Kind:    KindSuccess,
		Title:   "You're on the list!",
		Message: "We'll be in touch soon with early access.",
	}
	duplicateNotice = Notice{
		Kind:    KindDuplicate,
		Title:   "Already registered",
		Message: "This email is already on the waitlist.  Try a different address.",
	}
	failureNotice = Notice{
		Kind:    KindFailure,
		Title:   "Something went wrong",
		Message: "We could not save your signup.  Please try again later.",
	}
)

// ValidationNotice summarizes field errors into one notice.  The title
// follows the most basic problem present: missing input first, then a
// malformed email, then everything else.
func ValidationNotice(errs []FieldError) Notice {
	n := Notice{Kind: KindValidation, Fields: errs}

	has := func(rule string) bool {
		for _, e := range errs {
			if e.Rule == rule {
				return true
			}
		}
		return false
	}

	switch {
	case has("required"):
		n.Title, n.Message = "Missing Information", "Please fill in all fields."
	case has("waitlist_email"):
		n.Title, n.Message = "Invalid Email", "Please enter a valid email address."
	case has("waitlist_category"):
		n.Title, n.Message = "Invalid Category", "Please select one of the listed categories."
	case has("max"):
		n.Title, n.Message = "Input Too Long", "One or more fields exceed the allowed length."
	case len(errs) > 0 && errs[0].Message != "":
		n.Title, n.Message = "Invalid Submission", errs[0].Message
	default:
		n.Title, n.Message = "Invalid Submission", "Please check the form and try again."
	}
	return n
}
