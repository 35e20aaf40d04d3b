package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeOutOfRange, "thickness = %d", 9000)

	if err.Code != ErrCodeOutOfRange {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeOutOfRange)
	}

	if err.Message != "thickness = 9000" {
		t.Errorf("Message = %v, want %v", err.Message, "thickness = 9000")
	}

	expected := "OUT_OF_RANGE_VALUE: thickness = 9000"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := Wrap(ErrCodeJSONMalformed, cause, "embedded payload")

	if err.Code != ErrCodeJSONMalformed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeJSONMalformed)
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
			err:      New(ErrCodeChecksum, "stored 0x1234, computed 0x5678"),
			code:     ErrCodeChecksum,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeChecksum, "test"),
			code:     ErrCodeNoHeader,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeJSONMalformed, New(ErrCodeInternal, "inner"), "outer"),
			code:     ErrCodeJSONMalformed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeChecksum,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeChecksum,
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
			err:      New(ErrCodeDisallowed, "test"),
			expected: ErrCodeDisallowed,
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
			err:      New(ErrCodeSchemaTooNew, "preset requires engine 3.x"),
			expected: "preset requires engine 3.x",
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

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeSchemaTooNew,
		ErrCodeSchemaNewerMinor,
		ErrCodeMissingField,
		ErrCodeMissingOptional,
		ErrCodeOutOfRange,
		ErrCodeDisallowed,
		ErrCodeUnknownMode,
		ErrCodeCapacity,
		ErrCodeForeignCell,
		ErrCodePrematureEnd,
		ErrCodeNoHeader,
		ErrCodeChecksum,
		ErrCodeJSONMalformed,
		ErrCodeNotFound,
		ErrCodePresetNotFound,
		ErrCodeInvalidName,
		ErrCodeInvalidInput,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}

func TestValidatePresetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "canyon", false},
		{"valid with dash", "deep-caves", false},
		{"valid with underscore", "flat_world", false},
		{"valid with space", "Rocky Start", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"path separator", "folder/name", true},
		{"backslash", "folder\\name", true},
		{"traversal", "..secret", true},
		{"leading dot", ".hidden", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePresetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePresetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidatePresetName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateFolderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "default", false},
		{"valid with dash", "my-worlds", false},

		{"empty", "", true},
		{"path separator", "a/b", true},
		{"traversal", "a..b", true},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFolderName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFolderName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
