package cli

import (
	"errors"
	"testing"
)

func TestExitCodeError(t *testing.T) {
	underlying := errors.New("2 rules failed")
	err := NewExitCodeError(ExitNonCompliant, underlying)

	if err.Code != ExitNonCompliant {
		t.Errorf("Code = %d, want %d", err.Code, ExitNonCompliant)
	}
	if err.Error() != "2 rules failed" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is() did not find underlying error")
	}

	var exitErr *ExitCodeError
	wrapped := NewCommandError("validate", err)
	if !errors.As(wrapped, &exitErr) {
		t.Fatal("errors.As() did not find ExitCodeError through CommandError")
	}
	if exitErr.Code != ExitNonCompliant {
		t.Errorf("unwrapped Code = %d, want %d", exitErr.Code, ExitNonCompliant)
	}
}

func TestExitCodeError_NilUnderlying(t *testing.T) {
	err := NewExitCodeError(ExitError, nil)
	if err.Error() != "exit code 2" {
		t.Errorf("Error() = %q", err.Error())
	}
}
