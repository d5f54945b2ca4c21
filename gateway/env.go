package gateway

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/victorarias/claude-gateway/claude"
)

// ConfigFromEnv reads adapter settings from environment variables named
// <prefix>_MODEL, <prefix>_MAX_TOKENS, <prefix>_TEMPERATURE, <prefix>_TOP_P,
// <prefix>_TOP_K, <prefix>_STOP_SEQUENCES (comma separated) and
// <prefix>_VERSION. Unset variables leave the field unset. Values are parsed
// strictly; range checks are left to claude.New.
func ConfigFromEnv(prefix string, family claude.Family) (claude.Config, error) {
	key := func(name string) string { return prefix + "_" + name }

	maxTokens, err := intEnvStrict(key("MAX_TOKENS"))
	if err != nil {
		return claude.Config{}, err
	}
	temperature, err := floatEnvStrict(key("TEMPERATURE"))
	if err != nil {
		return claude.Config{}, err
	}
	topP, err := floatEnvStrict(key("TOP_P"))
	if err != nil {
		return claude.Config{}, err
	}
	topK, err := intEnvStrict(key("TOP_K"))
	if err != nil {
		return claude.Config{}, err
	}

	cfg := claude.Config{
		Family:        family,
		Model:         trimmedEnv(key("MODEL")),
		Temperature:   temperature,
		TopP:          topP,
		TopK:          topK,
		StopSequences: listEnv(key("STOP_SEQUENCES")),
		Version:       trimmedEnv(key("VERSION")),
	}
	if maxTokens != nil {
		cfg.MaxTokens = *maxTokens
	}
	return cfg, nil
}

// NewBedrockFromEnv builds a Bedrock Client from BEDROCK_* settings plus
// AWS_REGION and AWS_PROFILE.
func NewBedrockFromEnv(ctx context.Context) (*Client, error) {
	adapter, cfg, err := bedrockFromEnv()
	if err != nil {
		return nil, err
	}
	return NewBedrock(ctx, adapter, cfg)
}

// NewRuntimeFromEnv is NewBedrockFromEnv for the bedrockruntime transport.
func NewRuntimeFromEnv(ctx context.Context) (*RuntimeClient, error) {
	adapter, cfg, err := bedrockFromEnv()
	if err != nil {
		return nil, err
	}
	return NewRuntimeFromConfig(ctx, adapter, cfg)
}

// NewVertexFromEnv builds a Vertex AI Client from VERTEX_* settings,
// including VERTEX_PROJECT and VERTEX_LOCATION.
func NewVertexFromEnv(ctx context.Context) (*Client, error) {
	cfg, err := ConfigFromEnv("VERTEX", claude.Vertex)
	if err != nil {
		return nil, err
	}
	adapter, err := claude.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewVertex(ctx, adapter, VertexConfig{
		Project:  trimmedEnv("VERTEX_PROJECT"),
		Location: trimmedEnv("VERTEX_LOCATION"),
	})
}

func bedrockFromEnv() (*claude.Adapter, BedrockConfig, error) {
	cfg, err := ConfigFromEnv("BEDROCK", claude.Bedrock)
	if err != nil {
		return nil, BedrockConfig{}, err
	}
	adapter, err := claude.New(cfg)
	if err != nil {
		return nil, BedrockConfig{}, err
	}
	return adapter, BedrockConfig{
		Region:  trimmedEnv("AWS_REGION"),
		Profile: trimmedEnv("AWS_PROFILE"),
	}, nil
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func intEnvStrict(key string) (*int, error) {
	value := trimmedEnv(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid %s: %w", key, err)
	}
	return &parsed, nil
}

func floatEnvStrict(key string) (*float64, error) {
	value := trimmedEnv(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid %s: %w", key, err)
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, fmt.Errorf("gateway: invalid %s: must be a finite number", key)
	}
	return &parsed, nil
}

func listEnv(key string) []string {
	value := trimmedEnv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
