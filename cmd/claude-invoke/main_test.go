package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/victorarias/claude-gateway/claude"
	"github.com/victorarias/claude-gateway/gateway"
	"github.com/victorarias/claude-gateway/message"
	"github.com/victorarias/claude-gateway/usage"
)

type fakeGateway struct {
	got     []message.Message
	result  gateway.Result
	events  []gateway.StreamEvent
	err     error
}

func (f *fakeGateway) Invoke(_ context.Context, msgs []message.Message) (gateway.Result, error) {
	f.got = msgs
	return f.result, f.err
}

func (f *fakeGateway) Stream(_ context.Context, msgs []message.Message) (<-chan gateway.StreamEvent, error) {
	f.got = msgs
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan gateway.StreamEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

func newFake(t *testing.T) *fakeGateway {
	t.Helper()
	return &fakeGateway{}
}

func factoryFor(fake *fakeGateway, gotKind *string) gatewayFactory {
	return func(_ context.Context, kind string) (gateway.Gateway, error) {
		*gotKind = kind
		return fake, nil
	}
}

func TestParseCLIArgsDefaults(t *testing.T) {
	opts, err := parseCLIArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, gatewayBedrock, opts.Gateway)
	assert.False(t, opts.Stream)
	assert.Positive(t, opts.Timeout)
	assert.Empty(t, opts.Prompt)
}

func TestParseCLIArgsPositionalPrompt(t *testing.T) {
	opts, err := parseCLIArgs([]string{"-gateway", "Vertex", "-stream", "hello", "world"})
	require.NoError(t, err)
	assert.Equal(t, gatewayVertex, opts.Gateway)
	assert.True(t, opts.Stream)
	assert.Equal(t, "hello world", opts.Prompt)
}

func TestParseCLIArgsRejectsUnknownGateway(t *testing.T) {
	_, err := parseCLIArgs([]string{"-gateway", "openai"})
	require.Error(t, err)
}

func TestParseCLIArgsRejectsBadTimeout(t *testing.T) {
	_, err := parseCLIArgs([]string{"-timeout", "0s"})
	require.Error(t, err)
}

func TestResolvePrompt(t *testing.T) {
	prompt, err := resolvePrompt("", strings.NewReader("  hi  "), false)
	require.NoError(t, err)
	assert.Equal(t, "hi", prompt)

	prompt, err = resolvePrompt(" explicit ", strings.NewReader("ignored"), false)
	require.NoError(t, err)
	assert.Equal(t, "explicit", prompt)

	_, err = resolvePrompt("", strings.NewReader(""), true)
	require.Error(t, err)

	_, err = resolvePrompt("", strings.NewReader("   "), false)
	require.Error(t, err)
}

func TestRunInvoke(t *testing.T) {
	fake := newFake(t)
	u := usage.Usage{Input: 3, Output: 2, Total: 5}
	fake.result = gateway.Result{
		Message:              message.Assistant("Hello"),
		StopReason:           "end_turn",
		StopReasonNormalized: usage.StopReasonStop,
		Usage:                &u,
	}

	var kind string
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-gateway", "runtime", "-system", "be brief", "hi"}, strings.NewReader(""), true, &out, &errOut, factoryFor(fake, &kind))
	require.NoError(t, err)

	assert.Equal(t, gatewayRuntime, kind)
	assert.Equal(t, "Hello\n", out.String())
	assert.Contains(t, errOut.String(), "stop=end_turn (stop) tokens in=3 out=2 total=5")
	assert.Equal(t, []message.Message{message.System("be brief"), message.User("hi")}, fake.got)
}

func TestRunStream(t *testing.T) {
	fake := newFake(t)
	fake.events = []gateway.StreamEvent{
		gateway.TextDeltaEvent{Delta: "Hel"},
		gateway.TextDeltaEvent{Delta: "lo"},
		gateway.DoneEvent{StopReason: "max_tokens", StopReasonNormalized: usage.StopReasonMaxTokens},
	}

	var kind string
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-stream"}, strings.NewReader("piped prompt\n"), false, &out, &errOut, factoryFor(fake, &kind))
	require.NoError(t, err)

	assert.Equal(t, "Hello\n", out.String())
	assert.Contains(t, errOut.String(), "stop=max_tokens (max_tokens)")
	assert.Equal(t, []message.Message{message.User("piped prompt")}, fake.got)
}

func TestRunStreamError(t *testing.T) {
	fake := newFake(t)
	boom := errors.New("overloaded")
	fake.events = []gateway.StreamEvent{
		gateway.TextDeltaEvent{Delta: "par"},
		gateway.ErrorEvent{Err: boom},
	}

	var kind string
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-stream", "hi"}, strings.NewReader(""), true, &out, &errOut, factoryFor(fake, &kind))
	require.ErrorIs(t, err, boom)
}

func unusedFactory(t *testing.T) gatewayFactory {
	return func(context.Context, string) (gateway.Gateway, error) {
		t.Fatal("describe must not build a gateway")
		return nil, nil
	}
}

func TestRunDescribe(t *testing.T) {
	t.Setenv("BEDROCK_MODEL", claude.ModelBedrockClaude3Opus)
	t.Setenv("BEDROCK_TEMPERATURE", "0.3")

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-gateway", "runtime", "-describe"}, strings.NewReader(""), true, &out, &errOut, unusedFactory(t))
	require.NoError(t, err)

	var described map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &described))
	assert.Equal(t, claude.ModelBedrockClaude3Opus, described["model"])
	assert.Equal(t, 0.3, described["temperature"])
	assert.Equal(t, "bedrock", described["family"])
}

func TestRunDescribeVertexWithoutCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/nonexistent/credentials.json")

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-gateway", "vertex", "-describe"}, strings.NewReader(""), true, &out, &errOut, unusedFactory(t))
	require.NoError(t, err)

	var described map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &described))
	assert.Equal(t, claude.ModelVertexClaude3Sonnet, described["model"])
	assert.Equal(t, "vertex-2023-10-16", described["anthropic_version"])
}

func TestRunDescribeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("BEDROCK_TEMPERATURE", "2")

	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"-describe"}, strings.NewReader(""), true, &out, &errOut, unusedFactory(t))
	require.ErrorIs(t, err, claude.ErrHyperparameterRange)
}

func TestRunFactoryError(t *testing.T) {
	boom := errors.New("no credentials")
	factory := func(context.Context, string) (gateway.Gateway, error) { return nil, boom }
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"hi"}, strings.NewReader(""), true, &out, &errOut, factory)
	require.ErrorIs(t, err, boom)
}

func TestNewGatewayRejectsUnknownKind(t *testing.T) {
	_, err := newGateway(context.Background(), "openai")
	require.Error(t, err)
}

func TestStripControl(t *testing.T) {
	got := stripControl("ok\x1b[31mred\x1b[0m\x07\x00\u0085\t\n")
	assert.Equal(t, "ok[31mred[0m\t\n", got)
}

func TestRunStripsControlFromReply(t *testing.T) {
	fake := newFake(t)
	fake.result = gateway.Result{Message: message.Assistant("hi\x1b]0;title\x07")}

	var kind string
	var out, errOut bytes.Buffer
	err := run(context.Background(), []string{"hi"}, strings.NewReader(""), true, &out, &errOut, factoryFor(fake, &kind))
	require.NoError(t, err)
	assert.Equal(t, "hi]0;title\n", out.String())
}
