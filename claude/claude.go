// Package claude validates Claude generation parameters and translates
// conversations to and from the Messages wire format used by cloud
// model-invocation gateways.
//
// An Adapter is built once from a Config, validated eagerly, and is
// immutable afterwards. It never performs network I/O; see package gateway
// for transports.
package claude

import (
	"maps"
	"math"
	"slices"
	"strings"
)

const (
	DefaultName      = "AwsBedrockAnthropicClaude"
	DefaultMaxTokens = 8192
)

// Config controls an Adapter. Nil pointers mean "not set"; a pointer to zero
// is a real value and is sent to the gateway.
type Config struct {
	Name          string
	Family        Family // zero value selects Bedrock
	Model         string // empty selects Family.DefaultModel
	MaxTokens     int    // 0 selects DefaultMaxTokens
	Temperature   *float64
	TopP          *float64
	TopK          *int
	StopSequences []string
	Version       string // empty selects Family.Version

	// RequestParams is merged over the computed parameters and wins on conflict.
	RequestParams map[string]any
	// ClientParams is carried for transports and not interpreted here.
	ClientParams map[string]any
}

// Adapter holds validated, immutable generation settings.
type Adapter struct {
	name          string
	family        Family
	model         string
	maxTokens     int
	temperature   *float64
	topP          *float64
	topK          *int
	stopSequences []string
	version       string
	requestParams map[string]any
	clientParams  map[string]any
}

// New validates cfg and returns an Adapter. It fails with an
// *UnsupportedModelError or a *RangeError.
func New(cfg Config) (*Adapter, error) {
	family := cfg.Family
	if family.isZero() {
		family = Bedrock
	}
	family.Models = slices.Clone(family.Models)

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = DefaultName
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = family.DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = family.Version
	}

	a := &Adapter{
		name:          name,
		family:        family,
		model:         model,
		maxTokens:     maxTokens,
		temperature:   clonePtr(cfg.Temperature),
		topP:          clonePtr(cfg.TopP),
		topK:          clonePtr(cfg.TopK),
		stopSequences: slices.Clone(cfg.StopSequences),
		version:       version,
		requestParams: cloneParams(cfg.RequestParams),
		clientParams:  cloneParams(cfg.ClientParams),
	}

	if err := a.checkModel(); err != nil {
		return nil, err
	}
	if err := a.checkHyperparameters(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adapter) checkModel() error {
	if a.family.Allows(a.model) {
		return nil
	}
	return &UnsupportedModelError{
		Family:  a.family.Name,
		Model:   a.model,
		Allowed: a.family.AllowedModels(),
	}
}

func (a *Adapter) checkHyperparameters() error {
	if a.maxTokens < 1 {
		return &RangeError{Field: "max_tokens", Min: 1, Max: math.Inf(1), Value: float64(a.maxTokens)}
	}
	if a.temperature != nil {
		if err := checkRange("temperature", *a.temperature, 0, 1); err != nil {
			return err
		}
	}
	if a.topP != nil {
		if err := checkRange("top_p", *a.topP, 0, 1); err != nil {
			return err
		}
	}
	if a.topK != nil {
		if err := checkRange("top_k", float64(*a.topK), 0, 500); err != nil {
			return err
		}
	}
	return nil
}

func checkRange(field string, value, lo, hi float64) error {
	if math.IsNaN(value) || value < lo || value > hi {
		return &RangeError{Field: field, Min: lo, Max: hi, Value: value}
	}
	return nil
}

// Name returns the adapter's display name.
func (a *Adapter) Name() string { return a.name }

// Model returns the validated model id.
func (a *Adapter) Model() string { return a.model }

// Family returns the gateway family the model was validated against.
func (a *Adapter) Family() Family {
	f := a.family
	f.Models = slices.Clone(f.Models)
	return f
}

// Version returns the protocol version tag sent as anthropic_version.
func (a *Adapter) Version() string { return a.version }

// MaxTokens returns the effective output token limit.
func (a *Adapter) MaxTokens() int { return a.maxTokens }

// ClientParams returns a copy of the transport configuration mapping.
func (a *Adapter) ClientParams() map[string]any {
	return cloneParams(a.clientParams)
}

// Params returns the effective request parameters: the computed defaults
// with RequestParams merged on top. Each call returns a fresh map.
func (a *Adapter) Params() map[string]any {
	computed := map[string]any{
		"max_tokens":        a.maxTokens,
		"anthropic_version": a.version,
	}
	if a.temperature != nil {
		computed["temperature"] = *a.temperature
	}
	if a.topP != nil {
		computed["top_p"] = *a.topP
	}
	if a.topK != nil {
		computed["top_k"] = *a.topK
	}
	if len(a.stopSequences) > 0 {
		computed["stop_sequences"] = slices.Clone(a.stopSequences)
	}
	return Merge(computed, cloneParams(a.requestParams))
}

// Describe reports the adapter configuration. Unset knobs are nil.
func (a *Adapter) Describe() map[string]any {
	out := map[string]any{
		"name":              a.name,
		"family":            a.family.Name,
		"model":             a.model,
		"max_tokens":        a.maxTokens,
		"anthropic_version": a.version,
		"temperature":       nil,
		"top_p":             nil,
		"top_k":             nil,
		"stop_sequences":    nil,
	}
	if a.temperature != nil {
		out["temperature"] = *a.temperature
	}
	if a.topP != nil {
		out["top_p"] = *a.topP
	}
	if a.topK != nil {
		out["top_k"] = *a.topK
	}
	if len(a.stopSequences) > 0 {
		out["stop_sequences"] = slices.Clone(a.stopSequences)
	}
	return out
}

// Merge shallow-merges layers left to right into a new map. Keys in later
// layers replace keys from earlier ones; nil layers are skipped.
func Merge(layers ...map[string]any) map[string]any {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	out := make(map[string]any, size)
	for _, layer := range layers {
		maps.Copy(out, layer)
	}
	return out
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// cloneParams deep-copies the JSON-shaped values of m: nested objects and
// arrays are copied, scalars are shared.
func cloneParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneParams(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
