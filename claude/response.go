package claude

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/victorarias/claude-gateway/message"
	"github.com/victorarias/claude-gateway/usage"
)

// Content is the decoded shape of a response's content field.
type Content interface {
	Text() string
	isContent()
}

// TextContent is content sent as a plain string.
type TextContent string

// Text returns the string unchanged.
func (c TextContent) Text() string { return string(c) }
func (TextContent) isContent() {}

// BlockContent is a single content object.
type BlockContent struct {
	Value string
}

// Text returns the block's text.
func (c BlockContent) Text() string { return c.Value }
func (BlockContent) isContent() {}

// BlockListContent is a list of content objects.
type BlockListContent []BlockContent

// Text joins the block texts with newlines, in order.
func (c BlockListContent) Text() string {
	parts := make([]string, len(c))
	for i, block := range c {
		parts[i] = block.Value
	}
	return strings.Join(parts, "\n")
}
func (BlockListContent) isContent() {}

// NoContent stands for a missing, null or unrecognised content field.
type NoContent struct{}

// Text returns the empty string.
func (NoContent) Text() string { return "" }
func (NoContent) isContent() {}

var (
	_ Content = TextContent("")
	_ Content = BlockContent{}
	_ Content = BlockListContent{}
	_ Content = NoContent{}
)

// DecodeContent classifies a JSON-decoded content value.
func DecodeContent(v any) Content {
	switch c := v.(type) {
	case string:
		return TextContent(c)
	case map[string]any:
		return BlockContent{Value: stringField(c, "text")}
	case []any:
		blocks := make(BlockListContent, 0, len(c))
		for _, item := range c {
			obj, _ := item.(map[string]any)
			blocks = append(blocks, BlockContent{Value: stringField(obj, "text")})
		}
		return blocks
	default:
		return NoContent{}
	}
}

// ParseResponse converts a complete gateway response into a message.
//
// Payloads with type "message" keep their role and decode content. Any other
// payload is treated as the legacy completion shape: role assistant, content
// from the completion field. Missing fields produce empty values; this never
// fails.
func ParseResponse(payload map[string]any) message.Message {
	if stringField(payload, "type") == "message" {
		return message.Message{
			Role:    stringField(payload, "role"),
			Content: DecodeContent(payload["content"]).Text(),
		}
	}
	return message.Message{
		Role:    message.RoleAssistant,
		Content: stringField(payload, "completion"),
	}
}

// DecodeResponse parses raw JSON and hands it to ParseResponse. It fails only
// when data is not a JSON object.
func DecodeResponse(data []byte) (message.Message, error) {
	payload, err := decodeObject(data)
	if err != nil {
		return message.Message{}, err
	}
	return ParseResponse(payload), nil
}

// ParseDelta extracts the text carried by one streamed chunk. Chunks with a
// delta field report delta.text; others report completion. ok is false when
// the chunk carries no text.
func ParseDelta(payload map[string]any) (text string, ok bool) {
	if raw, has := payload["delta"]; has {
		delta, _ := raw.(map[string]any)
		return lookupString(delta, "text")
	}
	return lookupString(payload, "completion")
}

// DecodeDelta parses raw JSON and hands it to ParseDelta.
func DecodeDelta(data []byte) (string, bool, error) {
	payload, err := decodeObject(data)
	if err != nil {
		return "", false, err
	}
	text, ok := ParseDelta(payload)
	return text, ok, nil
}

// ParseUsage reads token counts from a response or a stream chunk. The
// message_start chunk nests them under message.usage; Bedrock appends
// invocation metrics to the last chunk of a stream.
func ParseUsage(payload map[string]any) usage.Usage {
	u, _ := payload["usage"].(map[string]any)
	if u == nil {
		if msg, ok := payload["message"].(map[string]any); ok {
			u, _ = msg["usage"].(map[string]any)
		}
	}
	if u == nil {
		if metrics, ok := payload[bedrockMetricsKey].(map[string]any); ok {
			return usage.Normalize(usage.Usage{
				Input:  intField(metrics, "inputTokenCount"),
				Output: intField(metrics, "outputTokenCount"),
			})
		}
	}
	return usage.Normalize(usage.Usage{
		Input:  intField(u, "input_tokens"),
		Output: intField(u, "output_tokens"),
	})
}

// ParseStopReason reads stop_reason from a response or from delta.stop_reason
// of a message_delta chunk.
func ParseStopReason(payload map[string]any) string {
	if reason := stringField(payload, "stop_reason"); reason != "" {
		return reason
	}
	delta, _ := payload["delta"].(map[string]any)
	return stringField(delta, "stop_reason")
}

const bedrockMetricsKey = "amazon-bedrock-invocationMetrics"

func decodeObject(data []byte) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("claude: decode response: %w", err)
	}
	return payload, nil
}

func lookupString(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

func stringField(obj map[string]any, key string) string {
	s, _ := lookupString(obj, key)
	return s
}

func intField(obj map[string]any, key string) int {
	switch v := obj[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
