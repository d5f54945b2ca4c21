package gateway

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/victorarias/claude-gateway/claude"
	"github.com/victorarias/claude-gateway/usage"
)

// streamState folds decoded stream chunks into events.
type streamState struct {
	debug      bool
	stopReason string
	usage      usage.Usage
	sawUsage   bool
}

func newStreamState() *streamState {
	return &streamState{
		debug: os.Getenv("CLAUDE_STREAM_DEBUG") != "",
	}
}

func (s *streamState) handle(chunk map[string]any) []StreamEvent {
	if s.debug {
		log.Printf("gateway stream chunk: type=%v keys=%d", chunk["type"], len(chunk))
	}

	if stop := strings.TrimSpace(claude.ParseStopReason(chunk)); stop != "" {
		s.stopReason = stop
	}

	// message_delta reports cumulative output tokens, so later counts replace earlier ones.
	if u := claude.ParseUsage(chunk); u.Total > 0 {
		if u.Input > 0 {
			s.usage.Input = u.Input
		}
		if u.Output > 0 {
			s.usage.Output = u.Output
		}
		s.sawUsage = true
	}

	if text, ok := claude.ParseDelta(chunk); ok && text != "" {
		return []StreamEvent{TextDeltaEvent{Delta: text}}
	}
	return nil
}

func (s *streamState) done() DoneEvent {
	stopReason := s.stopReason
	if stopReason == "" {
		stopReason = "end_turn"
	}
	var u *usage.Usage
	if s.sawUsage {
		normalized := usage.Normalize(usage.Usage{Input: s.usage.Input, Output: s.usage.Output})
		u = &normalized
	}
	return DoneEvent{
		StopReason:           stopReason,
		StopReasonNormalized: usage.StopReasonFromFinish(stopReason),
		Usage:                u,
	}
}

// send delivers ev unless ctx is done first.
func send(ctx context.Context, events chan<- StreamEvent, ev StreamEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
