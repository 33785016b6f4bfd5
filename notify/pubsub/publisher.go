package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Publisher sends one message and returns its server-assigned ID.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// PublisherFunc adapts a function to a Publisher.
type PublisherFunc func(ctx context.Context, data []byte, attrs map[string]string) (string, error)

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	return f(ctx, data, attrs)
}

// Config configures the Pub/Sub connection.
type Config struct {
	ProjectID       string `json:"project_id"       mapstructure:"project_id"       yaml:"project_id"`
	Topic           string `json:"topic"            mapstructure:"topic"            yaml:"topic"`
	CredentialsJSON string `json:"credentials_json" mapstructure:"credentials_json" yaml:"credentials_json"`
}

// TopicPublisher publishes to a Pub/Sub topic and waits for the ack.
type TopicPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewTopicPublisher wraps an existing topic.
func NewTopicPublisher(topic *pubsub.Topic) *TopicPublisher {
	return &TopicPublisher{topic: topic}
}

// Dial connects to Pub/Sub and returns a publisher for cfg.Topic. The topic
// must already exist.
func Dial(ctx context.Context, cfg Config) (*TopicPublisher, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("pubsub: project_id is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("pubsub: topic is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub: new client: %w", err)
	}
	return &TopicPublisher{client: client, topic: client.Topic(cfg.Topic)}, nil
}

// Publish implements Publisher.
func (p *TopicPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	res := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	return res.Get(ctx)
}

// Close flushes pending messages and releases the client.
func (p *TopicPublisher) Close() error {
	p.topic.Stop()
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
