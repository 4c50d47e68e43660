// Package notify publishes completed analyses to a Dapr pubsub topic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	daprc "github.com/dapr/go-sdk/client"
	"github.com/researchaccelerator-hub/comment-sentiment/metrics"
	"github.com/researchaccelerator-hub/comment-sentiment/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// DefaultTopic receives one event per successful run
const DefaultTopic = "analysis.completed"

// DefaultGRPCPort is the sidecar port when DAPR_GRPC_PORT is unset
const DefaultGRPCPort = "50001"

// maxMessageBytes bounds a single event in both directions
const maxMessageBytes = 4 * 1024 * 1024

// DaprConfig locates the sidecar and the topic
type DaprConfig struct {
	PubSubComponent string
	Topic           string
	GRPCPort        string
}

// Event is the payload of an analysis.completed message
type Event struct {
	RunID            string               `json:"runId"`
	VideoID          string               `json:"videoId"`
	Title            string               `json:"title,omitempty"`
	Strategy         string               `json:"strategy"`
	SummarySource    string               `json:"summarySource"`
	ProcessingTimeMs int64                `json:"processingTimeMs"`
	CompletedAt      time.Time            `json:"completedAt"`
	Result           model.AnalysisResult `json:"result"`
}

// Publisher delivers analysis events
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// eventClient is the subset of the Dapr client used here
type eventClient interface {
	PublishEvent(ctx context.Context, pubsubName, topicName string, data interface{}, opts ...daprc.PublishEventOption) error
	Close()
}

// DaprPublisher publishes events through the Dapr sidecar
type DaprPublisher struct {
	client     eventClient
	pubsubName string
	topic      string
}

// NewDaprPublisher connects to the Dapr sidecar on localhost
func NewDaprPublisher(config DaprConfig) (*DaprPublisher, error) {
	port := config.GRPCPort
	if port == "" {
		port = DefaultGRPCPort
	}

	conn, err := grpc.NewClient(
		net.JoinHostPort("127.0.0.1", port),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(maxMessageBytes),
			grpc.MaxCallSendMsgSize(maxMessageBytes),
		),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	log.Info().Str("port", port).Str("topic", config.Topic).Msg("Dapr event publishing enabled")
	return newDaprPublisher(daprc.NewClientWithConnection(conn), config.PubSubComponent, config.Topic), nil
}

func newDaprPublisher(client eventClient, pubsubName, topic string) *DaprPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &DaprPublisher{
		client:     client,
		pubsubName: pubsubName,
		topic:      topic,
	}
}

// Publish sends the event as JSON
func (p *DaprPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.RecordEvent("error")
		return fmt.Errorf("failed to marshal analysis event: %w", err)
	}

	err = p.client.PublishEvent(ctx, p.pubsubName, p.topic, data, daprc.PublishEventWithContentType("application/json"))
	if err != nil {
		metrics.RecordEvent("error")
		return fmt.Errorf("failed to publish analysis event (%s): %w", status.Code(err), err)
	}

	metrics.RecordEvent("ok")
	log.Ctx(ctx).Debug().
		Str("pubsub", p.pubsubName).
		Str("topic", p.topic).
		Str("run_id", event.RunID).
		Msg("Published analysis event")

	return nil
}

// Close closes the Dapr client
func (p *DaprPublisher) Close() error {
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
