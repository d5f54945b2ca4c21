package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/victorarias/claude-gateway/claude"
	"github.com/victorarias/claude-gateway/message"
)

const jsonContentType = "application/json"

// Invoker abstracts the Bedrock runtime calls for testing.
// *bedrockruntime.Client satisfies it.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

var (
	_ Invoker = (*bedrockruntime.Client)(nil)
	_ Gateway = (*RuntimeClient)(nil)
)

// RuntimeClient calls InvokeModel on the Bedrock runtime API directly,
// sending the adapter's request body unchanged.
type RuntimeClient struct {
	invoker Invoker
	adapter *claude.Adapter
}

// NewRuntime wraps an existing Invoker.
func NewRuntime(adapter *claude.Adapter, invoker Invoker) (*RuntimeClient, error) {
	if err := requireFamily(adapter, claude.Bedrock); err != nil {
		return nil, err
	}
	if invoker == nil {
		return nil, errors.New("gateway: bedrock invoker is required")
	}
	return &RuntimeClient{invoker: invoker, adapter: adapter}, nil
}

// NewRuntimeFromConfig builds a bedrockruntime client from the AWS default
// configuration, honoring cfg and the adapter's client params.
func NewRuntimeFromConfig(ctx context.Context, adapter *claude.Adapter, cfg BedrockConfig) (*RuntimeClient, error) {
	if err := requireFamily(adapter, claude.Bedrock); err != nil {
		return nil, err
	}
	awsCfg, err := loadAWSConfig(ctx, adapter, cfg)
	if err != nil {
		return nil, err
	}
	return NewRuntime(adapter, bedrockruntime.NewFromConfig(awsCfg))
}

// Adapter returns the adapter the client builds requests with.
func (r *RuntimeClient) Adapter() *claude.Adapter { return r.adapter }

// Invoke calls InvokeModel and parses the response body.
func (r *RuntimeClient) Invoke(ctx context.Context, msgs []message.Message) (Result, error) {
	body, err := json.Marshal(r.adapter.RequestBody(msgs))
	if err != nil {
		return Result{}, fmt.Errorf("gateway: encode request: %w", err)
	}

	out, err := r.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(r.adapter.Model()),
		Body:        body,
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
	})
	if err != nil {
		return Result{}, fmt.Errorf("gateway: invoke model: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Body, &payload); err != nil {
		return Result{}, fmt.Errorf("gateway: decode response: %w", err)
	}
	return resultFromPayload(payload), nil
}

// Stream calls InvokeModelWithResponseStream and emits the decoded chunks.
func (r *RuntimeClient) Stream(ctx context.Context, msgs []message.Message) (<-chan StreamEvent, error) {
	body, err := json.Marshal(r.adapter.RequestBody(msgs))
	if err != nil {
		return nil, fmt.Errorf("gateway: encode request: %w", err)
	}

	out, err := r.invoker.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(r.adapter.Model()),
		Body:        body,
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: invoke model stream: %w", err)
	}

	stream := out.GetStream()
	if stream == nil {
		return nil, errors.New("gateway: invoke model stream: no event stream")
	}

	events := make(chan StreamEvent, 32)
	go func() {
		defer close(events)
		defer func() { _ = stream.Close() }()
		forwardChunks(ctx, stream.Events(), stream.Err, events)
	}()
	return events, nil
}

// forwardChunks decodes Bedrock payload parts until chunks is closed, then
// reports streamErr or a DoneEvent.
func forwardChunks(ctx context.Context, chunks <-chan types.ResponseStream, streamErr func() error, events chan<- StreamEvent) {
	state := newStreamState()
	for chunk := range chunks {
		part, ok := chunk.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}
		var payload map[string]any
		if err := json.Unmarshal(part.Value.Bytes, &payload); err != nil {
			send(ctx, events, ErrorEvent{Err: fmt.Errorf("gateway stream: decode chunk: %w", err)})
			return
		}
		for _, ev := range state.handle(payload) {
			if !send(ctx, events, ev) {
				return
			}
		}
	}

	if err := streamErr(); err != nil {
		send(ctx, events, ErrorEvent{Err: fmt.Errorf("gateway stream: %w", err)})
		return
	}
	send(ctx, events, state.done())
}
