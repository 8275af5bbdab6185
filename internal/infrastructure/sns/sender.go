package sns

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
)

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TopicNotifier publishes an event to an SNS topic whenever an OTP is issued.
// The code itself is never published; subscribers only learn that a challenge exists.
type TopicNotifier struct {
	client   publisher
	topicARN string
}

type otpIssuedEvent struct {
	Event   string `json:"event"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

func NewTopicNotifier(ctx context.Context, cfg *config.Config) (*TopicNotifier, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_TOPIC_ARN is not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
	if err != nil {
		return nil, err
	}
	return &TopicNotifier{client: sns.NewFromConfig(awsCfg), topicARN: cfg.SNSTopicARN}, nil
}

func (n *TopicNotifier) SendOTP(ctx context.Context, email, _ string, purpose domain.ChallengePurpose) error {
	msg, err := json.Marshal(otpIssuedEvent{Event: "otp_issued", Email: email, Purpose: string(purpose)})
	if err != nil {
		return err
	}
	message := string(msg)
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &n.topicARN,
		Message:  &message,
	})
	return err
}
