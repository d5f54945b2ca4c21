package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/vertex"
	"github.com/victorarias/claude-gateway/claude"
	"golang.org/x/oauth2/google"
)

const (
	defaultVertexLocation = "us-east5"
	cloudPlatformScope    = "https://www.googleapis.com/auth/cloud-platform"
)

// VertexConfig controls a Client that routes through Vertex AI.
// Empty fields fall back to the adapter's client params ("project",
// "location").
type VertexConfig struct {
	Project  string
	Location string
	// Credentials defaults to Google Application Default Credentials.
	Credentials *google.Credentials
}

// NewVertex constructs a Client that uses Vertex AI as the backend.
// opts are applied after the Vertex middleware.
func NewVertex(ctx context.Context, adapter *claude.Adapter, cfg VertexConfig, opts ...option.RequestOption) (client *Client, err error) {
	if err := requireFamily(adapter, claude.Vertex); err != nil {
		return nil, err
	}

	params := adapter.ClientParams()
	project := firstNonEmpty(cfg.Project, stringParam(params, "project"))
	location := firstNonEmpty(cfg.Location, stringParam(params, "location"), defaultVertexLocation)

	creds := cfg.Credentials
	if creds == nil {
		creds, err = google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("gateway: vertex adc: %w", err)
		}
	}
	if project == "" {
		project = creds.ProjectID
	}
	if project == "" {
		return nil, errors.New("gateway: vertex project is required")
	}

	// The SDK's vertex helpers panic on transport errors instead of returning them.
	defer func() {
		if r := recover(); r != nil {
			client = nil
			err = fmt.Errorf("gateway: vertex: %v", r)
		}
	}()

	return newClient(adapter, append([]option.RequestOption{vertex.WithCredentials(ctx, location, project, creds)}, opts...)...)
}
