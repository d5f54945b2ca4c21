package claude

import (
	"encoding/json"

	"github.com/victorarias/claude-gateway/message"
)

// WireMessage is one entry of the request's messages array.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RequestBody is the Messages request handed to a gateway transport.
type RequestBody struct {
	Messages []WireMessage
	// System is omitted from the wire body when empty.
	System string
	Params map[string]any
}

// RequestBody converts msgs into a request body.
//
// System-role messages are lifted into the top-level system field. When more
// than one is present the last one wins and earlier ones are dropped without
// error. Every other message keeps its position relative to the others.
func (a *Adapter) RequestBody(msgs []message.Message) RequestBody {
	var system string
	wire := make([]WireMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.IsSystem() {
			system = m.Content
			continue
		}
		wire = append(wire, WireMessage{Role: m.Role, Content: m.Content})
	}
	return RequestBody{
		Messages: wire,
		System:   system,
		Params:   a.Params(),
	}
}

// Map flattens the body into the JSON object sent on the wire. Params are
// merged over messages, and system is applied last.
func (b RequestBody) Map() map[string]any {
	messages := make([]WireMessage, len(b.Messages))
	copy(messages, b.Messages)

	layers := []map[string]any{{"messages": messages}, b.Params}
	if b.System != "" {
		layers = append(layers, map[string]any{"system": b.System})
	}
	return Merge(layers...)
}

// MarshalJSON implements json.Marshaler.
func (b RequestBody) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Map())
}

var _ json.Marshaler = RequestBody{}
