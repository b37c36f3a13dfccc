package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestArcErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *ArcError
		want []string
	}{
		{
			name: "code and message",
			err:  New(SessionNotFound, "session s-1 is unknown"),
			want: []string{"SESSION_NOT_FOUND", "session s-1 is unknown"},
		},
		{
			name: "wrapped cause appears",
			err:  Wrap(StorageFailure, "save failed", stderrors.New("disk full")),
			want: []string{"STORAGE_FAILURE", "save failed", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("Error() = %q, missing %q", msg, w)
				}
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(InternalError, "wrapped", cause)
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CheckpointMissing, "x")); got != CheckpointMissing {
		t.Errorf("CodeOf = %s, want CHECKPOINT_MISSING", got)
	}
	if got := CodeOf(stderrors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %s, want INTERNAL_ERROR", got)
	}
}
