package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/DataSweeper/internal/codec"
	"github.com/JonMunkholm/DataSweeper/internal/table"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "unsupported format maps by sentinel",
			err:         fmt.Errorf("notes.txt: %w: .txt", codec.ErrUnsupportedFormat),
			wantCode:    "FILE006",
			wantMessage: "Only .csv and .xlsx files are accepted",
		},
		{
			name:        "parse failure maps by sentinel",
			err:         fmt.Errorf("%w: invalid csv: bare quote", codec.ErrParse),
			wantCode:    "FILE002",
			wantMessage: "File could not be read as a table",
		},
		{
			name:        "empty file wins over parse failure",
			err:         fmt.Errorf("%w: %w", codec.ErrParse, table.ErrNoHeader),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file has no header row",
		},
		{
			name:        "empty mean",
			err:         fmt.Errorf("fill column %q: %w", "Y", table.ErrEmptyMean),
			wantCode:    "PIPE001",
			wantMessage: "A numeric column has no values to average",
		},
		{
			name:        "unknown column",
			err:         fmt.Errorf("%w: %q", table.ErrUnknownColumn, "Z"),
			wantCode:    "PIPE002",
			wantMessage: "A selected column does not exist",
		},
		{
			name:        "duplicate column",
			err:         table.ErrDuplicateColumn,
			wantCode:    "PIPE003",
			wantMessage: "A column was selected more than once",
		},
		{
			name:        "session not found",
			err:         fmt.Errorf("%w: abc", ErrSessionNotFound),
			wantCode:    "SES001",
			wantMessage: "This file is no longer loaded",
		},
		{
			name:        "too many uploads",
			err:         ErrTooManyUploads,
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other files",
		},
		{
			name:        "deadline exceeded",
			err:         fmt.Errorf("ingest: %w", context.DeadlineExceeded),
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "body too large maps by pattern",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "Upload exceeds the maximum request size",
		},
		{
			name:        "rate limit maps by pattern",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CSV: line 3"),
			wantCode:    "FILE002",
			wantMessage: "File could not be read as a table",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_UserError(t *testing.T) {
	ue := NewUserError(fmt.Errorf("%w: %q", table.ErrUnknownColumn, "Z"))
	wrapped := fmt.Errorf("batch: %w", ue)

	if got := MapError(wrapped).Code; got != "PIPE002" {
		t.Errorf("MapError(wrapped UserError) code = %q, want PIPE002", got)
	}

	custom := &UserError{
		Technical: errors.New("request body too large"),
		User:      UserMessage{Message: "Custom", Code: "FILE002"},
	}
	if got := MapError(custom); got != custom.User {
		t.Errorf("MapError(UserError) = %+v, want its own message %+v", got, custom.User)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrTooManySessions, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("%w: %q", table.ErrUnknownColumn, "Z")
		userErr := NewUserError(techErr)

		if userErr.Error() != "A selected column does not exist" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, table.ErrUnknownColumn) {
			t.Error("Unwrap() should expose the original sentinel")
		}
	})
}
