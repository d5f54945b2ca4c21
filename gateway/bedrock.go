package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/victorarias/claude-gateway/claude"
)

// BedrockConfig selects the AWS account settings used to reach Amazon Bedrock.
// Empty fields fall back to the adapter's client params ("region",
// "profile") and then to the default AWS configuration chain.
type BedrockConfig struct {
	Region  string
	Profile string
	// AWS, when set, is used as-is instead of loading the default configuration.
	AWS *aws.Config
}

// NewBedrock constructs a Client that routes through Amazon Bedrock.
// Authentication uses the AWS default credential chain, or
// AWS_BEARER_TOKEN_BEDROCK when set. opts are applied after the Bedrock
// middleware.
func NewBedrock(ctx context.Context, adapter *claude.Adapter, cfg BedrockConfig, opts ...option.RequestOption) (*Client, error) {
	if err := requireFamily(adapter, claude.Bedrock); err != nil {
		return nil, err
	}
	awsCfg, err := loadAWSConfig(ctx, adapter, cfg)
	if err != nil {
		return nil, err
	}
	return newClient(adapter, append([]option.RequestOption{bedrock.WithConfig(awsCfg)}, opts...)...)
}

func loadAWSConfig(ctx context.Context, adapter *claude.Adapter, cfg BedrockConfig) (aws.Config, error) {
	if cfg.AWS != nil {
		if cfg.AWS.Region == "" {
			return aws.Config{}, errors.New("gateway: aws region is required")
		}
		return *cfg.AWS, nil
	}

	params := adapter.ClientParams()
	region := firstNonEmpty(cfg.Region, stringParam(params, "region"))
	profile := firstNonEmpty(cfg.Profile, stringParam(params, "profile"))

	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	if profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("gateway: load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		return aws.Config{}, errors.New("gateway: aws region is required")
	}
	return awsCfg, nil
}

func requireFamily(adapter *claude.Adapter, family claude.Family) error {
	if adapter == nil {
		return errors.New("gateway: adapter is required")
	}
	if got := adapter.Family().Name; got != family.Name {
		return fmt.Errorf("gateway: adapter family %q cannot be used with %s", got, family.Name)
	}
	return nil
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
