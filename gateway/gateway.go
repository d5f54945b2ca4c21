// Package gateway sends adapter-built Claude requests through a cloud
// model-invocation gateway and turns the responses back into messages.
//
// Client goes through anthropic-sdk-go with its Bedrock or Vertex AI
// middleware. RuntimeClient calls the Bedrock runtime API directly through
// aws-sdk-go-v2. Both implement Gateway.
package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/victorarias/claude-gateway/claude"
	"github.com/victorarias/claude-gateway/message"
	"github.com/victorarias/claude-gateway/usage"
)

// Gateway invokes a model with a conversation.
type Gateway interface {
	Invoke(ctx context.Context, msgs []message.Message) (Result, error)
	Stream(ctx context.Context, msgs []message.Message) (<-chan StreamEvent, error)
}

// Result is the outcome of a single model call.
type Result struct {
	Message              message.Message
	StopReason           string
	StopReasonNormalized usage.StopReason
	Usage                *usage.Usage
}

func resultFromPayload(payload map[string]any) Result {
	u := claude.ParseUsage(payload)
	stop := claude.ParseStopReason(payload)
	return Result{
		Message:              claude.ParseResponse(payload),
		StopReason:           stop,
		StopReasonNormalized: usage.StopReasonFromFinish(stop),
		Usage:                &u,
	}
}

// StreamEvent represents a single streaming event emitted by Stream.
// Consumers can rebuild the reply by concatenating TextDeltaEvent deltas
// until DoneEvent is received.
type StreamEvent interface {
	gatewayStreamEvent()
}

// TextDeltaEvent represents incremental text from the model.
type TextDeltaEvent struct {
	Delta string
}

func (TextDeltaEvent) gatewayStreamEvent() {}

// DoneEvent signals completion of the stream.
type DoneEvent struct {
	StopReason           string
	StopReasonNormalized usage.StopReason
	Usage                *usage.Usage
}

func (DoneEvent) gatewayStreamEvent() {}

// ErrorEvent signals a stream error. If received, the stream will end shortly after.
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) gatewayStreamEvent() {}

// CollectResult converts Stream events into a Result.
// It returns an error if an ErrorEvent is received or the stream ends without DoneEvent.
func CollectResult(events <-chan StreamEvent) (Result, error) {
	if events == nil {
		return Result{}, errors.New("gateway stream: nil events channel")
	}

	var reply strings.Builder
	for ev := range events {
		switch e := ev.(type) {
		case TextDeltaEvent:
			reply.WriteString(e.Delta)
		case DoneEvent:
			return Result{
				Message:              message.Assistant(reply.String()),
				StopReason:           e.StopReason,
				StopReasonNormalized: e.StopReasonNormalized,
				Usage:                e.Usage,
			}, nil
		case ErrorEvent:
			if e.Err == nil {
				return Result{}, errors.New("gateway stream failed")
			}
			return Result{}, e.Err
		}
	}

	return Result{}, errors.New("gateway stream ended without done event")
}
