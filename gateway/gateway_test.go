package gateway

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/victorarias/claude-gateway/usage"
)

func TestCollectResult(t *testing.T) {
	events := make(chan StreamEvent, 4)
	events <- TextDeltaEvent{Delta: "Hel"}
	events <- TextDeltaEvent{Delta: "lo"}
	events <- DoneEvent{StopReason: "end_turn", StopReasonNormalized: usage.StopReasonStop}
	close(events)

	result, err := CollectResult(events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message.Role != "assistant" || result.Message.Content != "Hello" {
		t.Fatalf("unexpected message: %#v", result.Message)
	}
	if result.StopReason != "end_turn" || result.StopReasonNormalized != usage.StopReasonStop {
		t.Fatalf("unexpected stop reason: %#v", result)
	}
}

func TestCollectResultErrors(t *testing.T) {
	if _, err := CollectResult(nil); err == nil {
		t.Fatal("expected error for nil channel")
	}

	boom := errors.New("boom")
	events := make(chan StreamEvent, 2)
	events <- TextDeltaEvent{Delta: "x"}
	events <- ErrorEvent{Err: boom}
	close(events)
	if _, err := CollectResult(events); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	events = make(chan StreamEvent, 1)
	events <- ErrorEvent{}
	close(events)
	if _, err := CollectResult(events); err == nil {
		t.Fatal("expected error for nil ErrorEvent")
	}

	events = make(chan StreamEvent, 1)
	events <- TextDeltaEvent{Delta: "x"}
	close(events)
	if _, err := CollectResult(events); err == nil {
		t.Fatal("expected error when done event is missing")
	}
}

func TestResultFromPayload(t *testing.T) {
	result := resultFromPayload(map[string]any{
		"type":        "message",
		"role":        "assistant",
		"content":     []any{map[string]any{"type": "text", "text": "ok"}},
		"stop_reason": "tool_use",
	})
	if result.Message.Content != "ok" {
		t.Fatalf("unexpected content %q", result.Message.Content)
	}
	if result.StopReasonNormalized != usage.StopReasonTool {
		t.Fatalf("expected tool stop reason, got %q", result.StopReasonNormalized)
	}
	if result.Usage == nil || result.Usage.Total != 0 {
		t.Fatalf("expected zero usage, got %#v", result.Usage)
	}
}

func TestStreamStateDefaultsStopReason(t *testing.T) {
	state := newStreamState()
	if evs := state.handle(map[string]any{"type": "message_stop"}); len(evs) != 0 {
		t.Fatalf("expected no events, got %#v", evs)
	}
	done := state.done()
	if done.StopReason != "end_turn" || done.StopReasonNormalized != usage.StopReasonStop {
		t.Fatalf("unexpected done event: %#v", done)
	}
	if done.Usage != nil {
		t.Fatalf("expected nil usage, got %#v", done.Usage)
	}
}

func TestStreamStateSkipsEmptyDeltas(t *testing.T) {
	state := newStreamState()
	evs := state.handle(map[string]any{"delta": map[string]any{"type": "text_delta", "text": ""}})
	if len(evs) != 0 {
		t.Fatalf("expected empty delta to be dropped, got %#v", evs)
	}
}

func TestStreamStateDebugLogging(t *testing.T) {
	t.Setenv("CLAUDE_STREAM_DEBUG", "1")

	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })

	state := newStreamState()
	state.handle(map[string]any{"type": "content_block_delta", "delta": map[string]any{"text": "x"}})
	if !strings.Contains(buf.String(), "type=content_block_delta") {
		t.Fatalf("expected debug log, got %q", buf.String())
	}
}
