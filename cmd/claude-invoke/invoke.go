package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/victorarias/claude-gateway/gateway"
	"github.com/victorarias/claude-gateway/message"
	"github.com/victorarias/claude-gateway/usage"
)

func run(ctx context.Context, args []string, in io.Reader, stdinTTY bool, out, errOut io.Writer, factory gatewayFactory) error {
	opts, err := parseCLIArgs(args)
	if err != nil {
		return err
	}

	if opts.Describe {
		adapter, err := adapterFromEnv(opts.Gateway)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(adapter.Describe())
	}

	gw, err := factory(ctx, opts.Gateway)
	if err != nil {
		return err
	}

	prompt, err := resolvePrompt(opts.Prompt, in, stdinTTY)
	if err != nil {
		return err
	}
	var msgs []message.Message
	if opts.System != "" {
		msgs = append(msgs, message.System(opts.System))
	}
	msgs = append(msgs, message.User(prompt))

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var result gateway.Result
	if opts.Stream {
		result, err = streamReply(runCtx, gw, msgs, out)
	} else {
		result, err = gw.Invoke(runCtx, msgs)
		if err == nil {
			_, err = io.WriteString(out, stripControl(result.Message.Content))
		}
	}
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	writeSummary(errOut, result)
	return nil
}

// streamReply prints deltas as they arrive and returns the assembled result.
func streamReply(ctx context.Context, gw gateway.Gateway, msgs []message.Message, out io.Writer) (gateway.Result, error) {
	events, err := gw.Stream(ctx, msgs)
	if err != nil {
		return gateway.Result{}, err
	}

	tee := make(chan gateway.StreamEvent)
	var writeErr error
	go func() {
		defer close(tee)
		for ev := range events {
			if delta, ok := ev.(gateway.TextDeltaEvent); ok && writeErr == nil {
				_, writeErr = io.WriteString(out, stripControl(delta.Delta))
			}
			tee <- ev
		}
	}()

	result, err := gateway.CollectResult(tee)
	// Drain so the forwarding goroutine can exit after an early return.
	for range tee {
	}
	if err != nil {
		return gateway.Result{}, err
	}
	if writeErr != nil {
		return gateway.Result{}, fmt.Errorf("write reply: %w", writeErr)
	}
	return result, nil
}

func writeSummary(w io.Writer, result gateway.Result) {
	u := usage.Usage{}
	if result.Usage != nil {
		u = *result.Usage
	}
	fmt.Fprintf(w, "stop=%s (%s) tokens in=%d out=%d total=%d\n",
		result.StopReason, result.StopReasonNormalized, u.Input, u.Output, u.Total)
}
