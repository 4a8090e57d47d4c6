package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// Permission is the push capability's permission state machine.
type Permission string

const (
	PermissionDefault Permission = "default" // not yet requested
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// PushAction mirrors a notification action on the push payload.
// Platforms accept at most two, so the coordinator trims before sending.
type PushAction struct {
	Label  string `json:"label"`
	Effect string `json:"effect"`
}

// Push is the platform notification payload. Tag carries the
// notification category so the platform coalesces by category.
type Push struct {
	Title              string          `json:"title"`
	Message            string          `json:"message"`
	Icon               string          `json:"icon"`
	Badge              string          `json:"badge"`
	Tag                string          `json:"tag"`
	Data               json.RawMessage `json:"data,omitempty"`
	RequireInteraction bool            `json:"require_interaction"`
	Actions            []PushAction    `json:"actions,omitempty"`
}

// Pusher is an OS/platform-level push capability. Permission is
// requested lazily on first needed send; a non-granted state skips the
// push channel only.
type Pusher interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Send(ctx context.Context, p Push) error
}

// SNSConfig configures the AWS SNS push provider.
type SNSConfig struct {
	Region    string
	TargetARN string // platform application endpoint
}

// SNSPusher delivers push notifications through an AWS SNS platform
// endpoint. The endpoint's Enabled attribute plays the role of the
// browser permission prompt: a disabled endpoint means "denied".
type SNSPusher struct {
	client    *sns.Client
	targetARN string
	logger    *zap.Logger

	mu         sync.Mutex
	permission Permission
}

// NewSNSPusher creates an SNS push provider.
func NewSNSPusher(ctx context.Context, cfg SNSConfig, logger *zap.Logger) (*SNSPusher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for SNS: %w", err)
	}

	return &SNSPusher{
		client:     sns.NewFromConfig(awsCfg),
		targetARN:  cfg.TargetARN,
		logger:     logger,
		permission: PermissionDefault,
	}, nil
}

// Permission returns the last known permission state.
func (p *SNSPusher) Permission() Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.permission
}

// RequestPermission resolves the permission state by inspecting the
// platform endpoint. A missing target or a disabled endpoint is a
// denial; transient lookup errors leave the state undecided.
func (p *SNSPusher) RequestPermission(ctx context.Context) (Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.permission != PermissionDefault {
		return p.permission, nil
	}

	if p.targetARN == "" {
		p.permission = PermissionDenied
		return p.permission, nil
	}

	out, err := p.client.GetEndpointAttributes(ctx, &sns.GetEndpointAttributesInput{
		EndpointArn: aws.String(p.targetARN),
	})
	if err != nil {
		return PermissionDefault, fmt.Errorf("sns endpoint lookup failed: %w", err)
	}

	if out.Attributes["Enabled"] == "true" {
		p.permission = PermissionGranted
	} else {
		p.permission = PermissionDenied
	}

	p.logger.Info("push permission resolved",
		zap.String("permission", string(p.permission)),
	)

	return p.permission, nil
}

// Send publishes the push payload to the platform endpoint.
func (p *SNSPusher) Send(ctx context.Context, push Push) error {
	payload, err := json.Marshal(push)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	input := &sns.PublishInput{
		TargetArn: aws.String(p.targetARN),
		Message:   aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"tag": {
				DataType:    aws.String("String"),
				StringValue: aws.String(push.Tag),
			},
		},
	}

	result, err := p.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}

	p.logger.Debug("push delivered via SNS",
		zap.String("tag", push.Tag),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)

	return nil
}
