package usage

import "strings"

// Usage captures token usage for a single model response.
type Usage struct {
	Input  int
	Output int
	Total  int
}

// StopReason describes why a generation stopped.
type StopReason string

const (
	StopReasonMaxTokens StopReason = "max_tokens"
	StopReasonStop      StopReason = "stop"
	StopReasonTool      StopReason = "tool"
	StopReasonError     StopReason = "error"
	StopReasonAbort     StopReason = "abort"
)

// Normalize fills Total when missing.
func Normalize(u Usage) Usage {
	if u.Total == 0 {
		u.Total = u.Input + u.Output
	}
	return u
}

// StopReasonFromFinish maps gateway stop reasons to normalized stop reasons.
func StopReasonFromFinish(reason string) StopReason {
	r := strings.ToLower(strings.TrimSpace(reason))
	switch r {
	case "length", "max_tokens", "max_output_tokens", "model_context_window_exceeded":
		return StopReasonMaxTokens
	case "stop", "end_turn", "stop_sequence", "stop_sequence_hit", "complete":
		return StopReasonStop
	case "tool_use", "tool_calls", "tool":
		return StopReasonTool
	case "abort", "aborted", "cancelled", "canceled":
		return StopReasonAbort
	case "error", "failed", "refusal":
		return StopReasonError
	default:
		return ""
	}
}
