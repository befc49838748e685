package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDuplicateName, "template %q already attached", "X")

	if err.Code != ErrCodeDuplicateName {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDuplicateName)
	}

	if err.Message != `template "X" already attached` {
		t.Errorf("Message = %v, want %v", err.Message, `template "X" already attached`)
	}

	expected := `DUPLICATE_NAME: template "X" already attached`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrCodeRenderFailed, cause, "rsvg-convert pdf")

	if err.Code != ErrCodeRenderFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRenderFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidTemplate, "test"),
			code:     ErrCodeInvalidTemplate,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidTemplate, "test"),
			code:     ErrCodeInvalidParameter,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRenderFailed, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeRenderFailed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnsupportedFormat, "test"),
			expected: ErrCodeUnsupportedFormat,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidParameter, "node spacing must be positive"),
			expected: "node spacing must be positive",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsInputError(t *testing.T) {
	if !IsInputError(New(ErrCodeDuplicateName, "dup")) {
		t.Error("DUPLICATE_NAME should be an input error")
	}
	if !IsInputError(New(ErrCodeUnsupportedFormat, "fmt")) {
		t.Error("UNSUPPORTED_FORMAT should be an input error")
	}
	if IsInputError(New(ErrCodeRenderFailed, "render")) {
		t.Error("RENDER_FAILED should not be an input error")
	}
	if IsInputError(errors.New("plain")) {
		t.Error("plain errors should not be input errors")
	}
}
