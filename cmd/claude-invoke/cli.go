package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	gatewayBedrock = "bedrock"
	gatewayVertex  = "vertex"
	gatewayRuntime = "runtime"
)

type cliOptions struct {
	Gateway  string
	System   string
	Prompt   string
	Stream   bool
	Describe bool
	Timeout  time.Duration
}

func parseCLIArgs(args []string) (cliOptions, error) {
	opts := cliOptions{}
	fs := flag.NewFlagSet("claude-invoke", flag.ContinueOnError)
	var out bytes.Buffer
	fs.SetOutput(&out)

	fs.StringVar(&opts.Gateway, "gateway", gatewayBedrock, "Gateway to call: bedrock, vertex or runtime.")
	fs.StringVar(&opts.System, "system", "", "System prompt.")
	fs.BoolVar(&opts.Stream, "stream", false, "Print the reply as it streams.")
	fs.BoolVar(&opts.Describe, "describe", false, "Print the adapter settings as JSON and exit.")
	fs.DurationVar(&opts.Timeout, "timeout", 180*time.Second, "Request timeout.")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("%w\n%s", err, out.String())
	}
	opts.Gateway = strings.ToLower(strings.TrimSpace(opts.Gateway))
	switch opts.Gateway {
	case gatewayBedrock, gatewayVertex, gatewayRuntime:
	default:
		return cliOptions{}, fmt.Errorf("invalid -gateway %q: expected bedrock, vertex or runtime", opts.Gateway)
	}
	if opts.Timeout <= 0 {
		return cliOptions{}, fmt.Errorf("invalid -timeout %s: must be greater than 0", opts.Timeout)
	}
	opts.Prompt = strings.Join(fs.Args(), " ")
	return opts, nil
}

func resolvePrompt(explicit string, in io.Reader, stdinTTY bool) (string, error) {
	prompt := strings.TrimSpace(stripControl(explicit))
	if prompt != "" {
		return prompt, nil
	}
	if stdinTTY {
		return "", fmt.Errorf("a prompt argument or piped stdin is required")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	prompt = strings.TrimSpace(stripControl(string(data)))
	if prompt == "" {
		return "", fmt.Errorf("received empty input")
	}
	return prompt, nil
}

func stdinIsTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return true
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// stripControl drops C0 and C1 control characters other than newline,
// carriage return and tab, so piped input and model output cannot drive the
// terminal.
func stripControl(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n', r == '\r', r == '\t':
			return r
		case r < 0x20, r == 0x7f, r >= 0x80 && r <= 0x9f:
			return -1
		}
		return r
	}, value)
}
