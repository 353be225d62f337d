// Package analytics publishes one event per legal operation.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"legal-rag-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

type Event struct {
	ID           string    `json:"id"`
	Operation    string    `json:"operation"`
	Subject      string    `json:"subject"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	Intent       string    `json:"intent,omitempty"`
	ResultCount  int       `json:"resultCount"`
	Confidence   float64   `json:"confidence,omitempty"`
	Degraded     bool      `json:"degraded"`
	Status       string    `json:"status"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	Timestamp    time.Time `json:"timestamp"`
}

// Publisher never returns an error; operations must not fail because analytics did.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type snsAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSPublisher struct {
	client   snsAPI
	topicARN string
	logger   logger.Logger
}

func NewSNSPublisher(client snsAPI, topicARN string, log logger.Logger) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, logger: log}
}

func (p *SNSPublisher) Publish(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to encode analytics event", map[string]interface{}{"error": err.Error()})
		return
	}

	// The operation's own context may already be done by the time it reports.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"operation": {DataType: aws.String("String"), StringValue: aws.String(event.Operation)},
			"status":    {DataType: aws.String("String"), StringValue: aws.String(event.Status)},
		},
	})
	if err != nil {
		p.logger.Warn("failed to publish analytics event", map[string]interface{}{
			"eventId":   event.ID,
			"operation": event.Operation,
			"error":     err.Error(),
		})
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
