package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mwill20/MultiAgent-SOC/internal/action"
	"github.com/mwill20/MultiAgent-SOC/internal/triage"
)

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	summary := &triage.Summary{
		IncidentID:  "INC-2024-0042",
		TurnID:      "01JN123",
		Narrative:   "Confirmed malware execution on WS-FINANCE-12.",
		Risk:        triage.RiskHigh,
		Action:      action.Escalate,
		AlertCount:  1,
		Duration:    23.4,
		CompletedAt: time.Date(2026, 2, 26, 14, 23, 0, 0, time.UTC),
	}

	if err := n.Notify(context.Background(), summary); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, narrative, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "INC-2024-0042") {
		t.Errorf("header text = %q, want to contain INC-2024-0042", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for an escalation")
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Notify(context.Background(), &triage.Summary{}); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_TruncatesLongNarrative(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Notify(context.Background(), &triage.Summary{
		IncidentID: "INC-1",
		TurnID:     "01JN456",
		Action:     action.Monitor,
		Narrative:  strings.Repeat("x", 4000),
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	blocks := got["blocks"].([]any)
	narrativeSection := blocks[4].(map[string]any)
	text := narrativeSection["text"].(map[string]any)["text"].(string)

	if len(text) > maxNarrativeLen+len("*Narrative*\n\n") {
		t.Errorf("narrative text length = %d, expected <= %d", len(text), maxNarrativeLen+len("*Narrative*\n\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated narrative to end with ...")
	}
}

func TestActionEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action action.Action
		want   string
	}{
		{"escalate", action.Escalate, "\U0001f534"},
		{"monitor", action.Monitor, "\U0001f7e1"},
		{"close", action.Close, "\U0001f7e2"},
		{"needs more info", action.NeedsMoreInfo, "⚪"},
		{"unknown", action.Action("WAT"), "⚪"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := actionEmoji(tt.action); got != tt.want {
				t.Errorf("actionEmoji(%q) = %q, want %q", tt.action, got, tt.want)
			}
		})
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("INC-1", "ESCALATE", "High", "CPU is very high on node-1.")
	f.Add("", "", "", "")
	f.Add("<@U123> mention", "MONITOR", "*bold* _italic_ ~strike~", "note")
	f.Add("inc\x00\x01\x02", "CLOSE", "risk\nline", "narrative\ttab")
	f.Add(strings.Repeat("A", 5000), "NEEDS_MORE_INFO", "Low", strings.Repeat("x", 10000))

	f.Fuzz(func(t *testing.T, incidentID, act, risk, narrative string) {
		summary := &triage.Summary{
			IncidentID:  incidentID,
			TurnID:      "fuzz-id",
			Narrative:   narrative,
			Risk:        triage.Risk(risk),
			Action:      action.Action(act),
			AlertCount:  1,
			Duration:    1.0,
			CompletedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		// Must not panic and must produce valid JSON
		msg := buildMessage(summary)
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestNotify_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Notify(context.Background(), &triage.Summary{
		IncidentID: "INC-9",
		TurnID:     "01JN789",
		Action:     action.Close,
	})
	if err == nil {
		t.Fatal("expected error on non-OK status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
