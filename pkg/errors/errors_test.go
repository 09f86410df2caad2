package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("provider closed")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "new",
			err:  New(ErrCodeInvalidParams, "col_span %d exceeds %d lanes", 4, 3),
			want: "INVALID_PARAMS: col_span 4 exceeds 3 lanes",
		},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeMaterialize, cause, "position %d", 7),
			want: "MATERIALIZE_FAILED: position 7: provider closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("provider closed")
	err := Wrap(ErrCodeMaterialize, cause, "position 3")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
}

func TestCodeLookup(t *testing.T) {
	outer := fmt.Errorf("jump: %w", New(ErrCodeInvalidState, "saved state is for another manifest"))

	tests := []struct {
		name string
		err  error
		code Code
	}{
		{name: "direct", err: New(ErrCodeInvalidOrientation, "diagonal"), code: ErrCodeInvalidOrientation},
		{name: "fmt wrapped", err: outer, code: ErrCodeInvalidState},
		{name: "outermost code wins", err: Wrap(ErrCodeMaterialize, New(ErrCodeInvalidParams, "inner"), "outer"), code: ErrCodeMaterialize},
		{name: "plain error", err: errors.New("plain"), code: ""},
		{name: "nil", err: nil, code: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "coded", err: New(ErrCodeStateNotFound, "state %s not found", "abc"), want: "state abc not found"},
		{name: "plain", err: errors.New("disk full"), want: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid params", err: New(ErrCodeInvalidParams, "bad span"), want: 400},
		{name: "invalid manifest", err: New(ErrCodeInvalidManifest, "bad toml"), want: 400},
		{name: "invalid state", err: New(ErrCodeInvalidState, "mismatch"), want: 400},
		{name: "state not found", err: New(ErrCodeStateNotFound, "gone"), want: 404},
		{name: "item not found", err: New(ErrCodeItemNotFound, "position 9"), want: 404},
		{name: "materialize", err: Wrap(ErrCodeMaterialize, errors.New("boom"), "position 3"), want: 422},
		{name: "unsupported", err: New(ErrCodeUnsupported, "nope"), want: 501},
		{name: "internal", err: New(ErrCodeInternal, "bug"), want: 500},
		{name: "plain error", err: errors.New("plain"), want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
