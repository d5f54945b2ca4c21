package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/victorarias/claude-gateway/claude"
	"github.com/victorarias/claude-gateway/message"
)

const messagesPath = "v1/messages"

// Interface compliance check.
var _ Gateway = (*Client)(nil)

// Client posts adapter-built request bodies to the Messages endpoint of an
// anthropic-sdk-go client. The gateway middleware installed on the SDK
// client (Bedrock or Vertex AI) moves the model into the URL and signs the
// request.
type Client struct {
	client  sdk.Client
	adapter *claude.Adapter
}

func newClient(adapter *claude.Adapter, opts ...option.RequestOption) (*Client, error) {
	if adapter == nil {
		return nil, errors.New("gateway: adapter is required")
	}
	return &Client{
		client:  sdk.NewClient(opts...),
		adapter: adapter,
	}, nil
}

// Adapter returns the adapter the client builds requests with.
func (c *Client) Adapter() *claude.Adapter { return c.adapter }

// Invoke sends msgs and waits for the complete response.
func (c *Client) Invoke(ctx context.Context, msgs []message.Message) (Result, error) {
	var payload map[string]any
	if err := c.client.Post(ctx, messagesPath, c.body(msgs, false), &payload); err != nil {
		return Result{}, fmt.Errorf("gateway: %w", err)
	}
	return resultFromPayload(payload), nil
}

// Stream sends msgs with streaming enabled. Each chunk is decoded with
// claude.ParseDelta; the channel is closed after a DoneEvent or ErrorEvent.
func (c *Client) Stream(ctx context.Context, msgs []message.Message) (<-chan StreamEvent, error) {
	var raw *http.Response
	if err := c.client.Post(ctx, messagesPath, c.body(msgs, true), &raw); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if raw == nil || raw.Body == nil {
		return nil, errors.New("gateway: empty stream response")
	}
	stream := ssestream.NewStream[map[string]any](ssestream.NewDecoder(raw), nil)

	events := make(chan StreamEvent, 32)
	go func() {
		defer close(events)
		defer func() { _ = stream.Close() }()

		state := newStreamState()
		for stream.Next() {
			for _, ev := range state.handle(stream.Current()) {
				if !send(ctx, events, ev) {
					return
				}
			}
		}

		if err := stream.Err(); err != nil {
			send(ctx, events, ErrorEvent{Err: fmt.Errorf("gateway stream: %w", err)})
			return
		}
		send(ctx, events, state.done())
	}()

	return events, nil
}

// body adds the routing fields the SDK middleware consumes to the adapter's
// request body.
func (c *Client) body(msgs []message.Message, stream bool) map[string]any {
	return claude.Merge(c.adapter.RequestBody(msgs).Map(), map[string]any{
		"model":  c.adapter.Model(),
		"stream": stream,
	})
}
