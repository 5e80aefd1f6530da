package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/byma-gex-api/internal/recorder"
)

func TestSessionSummaryAdd(t *testing.T) {
	s := &SessionSummary{Date: "2025-03-10"}
	s.Add(&recorder.BatchResult{Total: 3, Captured: 2, Failed: 1, Errors: []string{"PAMP: feed down"}})
	s.Add(&recorder.BatchResult{Total: 3, Captured: 3})

	if s.Passes != 2 || s.Captured != 5 || s.Failed != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if len(s.Errors) != 1 {
		t.Fatalf("errors = %v", s.Errors)
	}
}

func TestFormatSessionMessage(t *testing.T) {
	s := &SessionSummary{
		Date:     "2025-03-10",
		Passes:   4,
		Captured: 10,
		Failed:   2,
		Errors:   []string{"a", "b", "c", "d", "e"},
		Duration: 90 * time.Second,
	}

	msg := FormatSessionMessage(s, errors.New("boom"))
	for _, want := range []string{"Passes: 4", "Captured: 10", "Failed: 2", "Error: boom", "... and 2 more errors"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestClientSendsToTopic(t *testing.T) {
	var gotPath, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(&Config{
		Enabled:  true,
		Server:   srv.URL,
		Topic:    "byma-recorder",
		Priority: "default",
		Tags:     "chart_with_upwards_trend",
	}, zap.NewNop())

	s := &SessionSummary{Date: "2025-03-10", Passes: 1, Captured: 3}
	if err := client.SendSessionClosed(context.Background(), s); err != nil {
		t.Fatalf("SendSessionClosed: %v", err)
	}
	if gotPath != "/byma-recorder" {
		t.Fatalf("path = %q", gotPath)
	}
	if !strings.Contains(gotTitle, "2025-03-10") {
		t.Fatalf("title = %q", gotTitle)
	}
}

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	n := New(&Config{Enabled: false}, zap.NewNop())
	if _, ok := n.(*NoopNotifier); !ok {
		t.Fatalf("expected NoopNotifier, got %T", n)
	}
}
