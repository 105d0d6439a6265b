package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/key-verify-api/internal/domain"
)

// Publisher sends validation events to an SNS topic.
type Publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher creates an SNS publisher. When endpointURL is set (LocalStack),
// it overrides the endpoint.
func NewPublisher(awsCfg aws.Config, endpointURL, topicARN string) *Publisher {
	clientOpts := []func(*sns.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}
	return &Publisher{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: topicARN}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.ValidationEvent) error {
	in, err := publishInput(p.topicARN, ev)
	if err != nil {
		return err
	}
	if _, err := p.client.Publish(ctx, in); err != nil {
		return fmt.Errorf("sns publish %s: %w", ev.EventID, err)
	}
	return nil
}

func publishInput(topicARN string, ev domain.ValidationEvent) (*sns.PublishInput, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(domain.EventTypeUserValidated)},
			"user_id":    {DataType: aws.String("String"), StringValue: aws.String(ev.UserID)},
		},
	}, nil
}
