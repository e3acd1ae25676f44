package signup

import (
	"errors"
	"testing"
)

func TestBackendError_Message(t *testing.T) {
	cases := map[string]struct {
		err  *BackendError
		want string
	}{
		"code and cause": {&BackendError{Code: "23505", Err: errors.New("dup")}, "signup backend [23505]: dup"},
		"cause only":     {&BackendError{Err: errors.New("timeout")}, "signup backend: timeout"},
		"code only":      {&BackendError{Code: CodeUniqueViolation}, "signup backend [23505]: unknown error"},
		"empty":          {&BackendError{}, "signup backend: unknown error"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("Error() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBackendError_CodeOnlyIsDuplicate(t *testing.T) {
	err := error(&BackendError{Code: CodeUniqueViolation})
	if !IsDuplicate(err) {
		t.Fatal("code-only BackendError should classify as duplicate")
	}
	if errors.Unwrap(err) != nil {
		t.Fatal("Unwrap should be nil without a cause")
	}
}
