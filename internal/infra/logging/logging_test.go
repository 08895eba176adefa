//go:build !integration

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWith(t *testing.T) {
	t.Run("attaches request and account ids from ctx", func(t *testing.T) {
		var out bytes.Buffer
		base := zerolog.New(&out)

		ctx := WithRequestID(context.Background(), "req-123")
		ctx = WithAccountID(ctx, "acc-456")

		With(ctx, &base).Info().Msg("hello")

		line := out.String()
		if !strings.Contains(line, `"request_id":"req-123"`) {
			t.Errorf("log line missing request id: %s", line)
		}
		if !strings.Contains(line, `"account_id":"acc-456"`) {
			t.Errorf("log line missing account id: %s", line)
		}
	})

	t.Run("bare ctx adds no fields", func(t *testing.T) {
		var out bytes.Buffer
		base := zerolog.New(&out)

		With(context.Background(), &base).Info().Msg("hello")

		line := out.String()
		if strings.Contains(line, "request_id") || strings.Contains(line, "account_id") {
			t.Errorf("unexpected ids on bare context: %s", line)
		}
	})
}

func TestRedact(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "***"},
		{"short", "***"},
		{"eightchr", "***"},
		{"student@example.com", "stud...om"},
	}
	for _, tc := range cases {
		if got := Redact(tc.in); got != tc.want {
			t.Errorf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	if strings.Contains(Redact("student@example.com"), "example") {
		t.Error("redacted value still carries the domain")
	}
}
