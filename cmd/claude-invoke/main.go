package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/victorarias/claude-gateway/claude"
	"github.com/victorarias/claude-gateway/gateway"
)

type gatewayFactory func(ctx context.Context, kind string) (gateway.Gateway, error)

func main() {
	// A missing .env is fine; the environment may already be configured.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, stdinIsTTY(), os.Stdout, os.Stderr, newGateway); err != nil {
		fmt.Fprintln(os.Stderr, "claude-invoke:", err)
		os.Exit(1)
	}
}

func newGateway(ctx context.Context, kind string) (gateway.Gateway, error) {
	switch kind {
	case gatewayBedrock:
		return gateway.NewBedrockFromEnv(ctx)
	case gatewayVertex:
		return gateway.NewVertexFromEnv(ctx)
	case gatewayRuntime:
		return gateway.NewRuntimeFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown gateway %q", kind)
	}
}

// adapterFromEnv builds the adapter a gateway of kind would use without
// loading any cloud credentials.
func adapterFromEnv(kind string) (*claude.Adapter, error) {
	prefix, family := "BEDROCK", claude.Bedrock
	if kind == gatewayVertex {
		prefix, family = "VERTEX", claude.Vertex
	}
	cfg, err := gateway.ConfigFromEnv(prefix, family)
	if err != nil {
		return nil, err
	}
	return claude.New(cfg)
}
