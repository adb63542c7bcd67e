package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "validation errors",
			err:      ValidationErrors{{Field: "age", Constraint: ConstraintMax, Message: "must be at most 150"}},
			wantCode: "VAL001",
		},
		{
			name:     "wrapped validation errors",
			err:      fmt.Errorf("append: %w", ValidationErrors{{Field: "name"}}),
			wantCode: "VAL001",
		},
		{
			name:     "conflict",
			err:      fmt.Errorf("%w: gave up after 5 attempts", ErrConflict),
			wantCode: "STO002",
		},
		{
			name:     "malformed data",
			err:      fmt.Errorf("%w: line 3: invalid age \"x\"", ErrMalformedData),
			wantCode: "CSV001",
		},
		{
			name:     "too many appends",
			err:      ErrTooManyAppends,
			wantCode: "APP001",
		},
		{
			name:     "storage failure",
			err:      fmt.Errorf("%w: read datos.csv: permission denied", ErrStorage),
			wantCode: "STO001",
		},
		{
			name:     "storage timeout reports the timeout",
			err:      fmt.Errorf("%w: read datos.csv: %w", ErrStorage, context.DeadlineExceeded),
			wantCode: "REQ004",
		},
		{
			name:     "storage throttling is a storage failure",
			err:      fmt.Errorf("%w: write datos.csv: googleapi: Error 429: The object exceeded the rate limit for object mutation operations", ErrStorage),
			wantCode: "STO001",
		},
		{
			name:     "cancelled storage call",
			err:      fmt.Errorf("%w: read datos.csv: %w", ErrStorage, context.Canceled),
			wantCode: "REQ003",
		},
		{
			name:     "cancelled request",
			err:      context.Canceled,
			wantCode: "REQ003",
		},
		{
			name:     "body too large",
			err:      errors.New("http: request body too large"),
			wantCode: "REQ002",
		},
		{
			name:     "invalid body",
			err:      errors.New("invalid request body: unexpected EOF"),
			wantCode: "REQ001",
		},
		{
			name:     "rate limit is case-insensitive",
			err:      errors.New("Rate Limit exceeded"),
			wantCode: "RATE001",
		},
		{
			name:     "unknown error falls back",
			err:      errors.New("something odd"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError() = %+v, want message and action", got)
			}
		})
	}
}
