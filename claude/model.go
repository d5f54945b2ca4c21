package claude

import "slices"

// Family groups the model ids a gateway accepts with the protocol version
// tag it expects in the request body.
type Family struct {
	Name         string
	Models       []string
	DefaultModel string
	Version      string
}

// Bedrock model identifiers.
const (
	ModelBedrockClaude3Sonnet = "anthropic.claude-3-sonnet-20240229-v1:0"
	ModelBedrockClaude3Opus   = "anthropic.claude-3-opus-20240229-v1:0"
	ModelBedrockClaude3Haiku  = "anthropic.claude-3-haiku-20240307-v1:0"
)

// Vertex AI model identifiers.
const (
	ModelVertexClaude3Sonnet = "claude-3-sonnet@20240229"
	ModelVertexClaude3Opus   = "claude-3-opus@20240229"
	ModelVertexClaude3Haiku  = "claude-3-haiku@20240307"
)

// Bedrock is the Amazon Bedrock family and the default for Config.
var Bedrock = Family{
	Name:         "bedrock",
	Models:       []string{ModelBedrockClaude3Sonnet, ModelBedrockClaude3Opus, ModelBedrockClaude3Haiku},
	DefaultModel: ModelBedrockClaude3Sonnet,
	Version:      "bedrock-2023-05-31",
}

// Vertex is the Google Vertex AI family.
var Vertex = Family{
	Name:         "vertex",
	Models:       []string{ModelVertexClaude3Sonnet, ModelVertexClaude3Opus, ModelVertexClaude3Haiku},
	DefaultModel: ModelVertexClaude3Sonnet,
	Version:      "vertex-2023-10-16",
}

// AllowedModels returns a copy of the family's allow-list.
func (f Family) AllowedModels() []string {
	return slices.Clone(f.Models)
}

// Allows reports whether model is in the allow-list.
func (f Family) Allows(model string) bool {
	return slices.Contains(f.Models, model)
}

func (f Family) isZero() bool {
	return f.Name == "" && len(f.Models) == 0
}
