package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"solana-wallet-forensics/internal/domain/entity"
	"solana-wallet-forensics/internal/infrastructure/config"
	"solana-wallet-forensics/internal/infrastructure/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSConsumer handles NATS JetStream consumption of transfer events
type NATSConsumer struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	sub       *nats.Subscription
	config    *config.NATSConfig
	logger    *logger.Logger
	msgChan   chan *entity.TransferEvent
	isRunning bool
}

// NewNATSConsumer creates a new NATS consumer
func NewNATSConsumer(cfg *config.NATSConfig, logger *logger.Logger) *NATSConsumer {
	return &NATSConsumer{
		config:  cfg,
		logger:  logger.WithComponent("nats-consumer"),
		msgChan: make(chan *entity.TransferEvent, cfg.MaxPendingMessages),
	}
}

// Connect connects to NATS server and sets up consumer
func (n *NATSConsumer) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Info("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("wallet-forensics"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		n.logger.Error("Failed to connect to NATS", zap.Error(err))
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n.conn = conn

	// Try JetStream first, if not available fall back to core NATS
	js, err := conn.JetStream()
	if err != nil {
		n.logger.Warn("JetStream not available, using core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.js = js
	return n.setupJetStreamSubscription()
}

// setupJetStreamSubscription sets up JetStream subscription
func (n *NATSConsumer) setupJetStreamSubscription() error {
	subject := fmt.Sprintf("%s.events", n.config.SubjectPrefix)
	consumer := n.config.ConsumerGroup

	n.logger.Info("Setting up JetStream subscription",
		zap.String("subject", subject),
		zap.String("consumer", consumer),
		zap.String("stream", n.config.StreamName))

	sub, err := n.js.PullSubscribe(subject, consumer, nats.Bind(n.config.StreamName, consumer))
	if err != nil {
		n.logger.Warn("Failed to bind to JetStream consumer, falling back to core NATS", zap.Error(err))
		return n.setupCoreNATSSubscription()
	}

	n.sub = sub
	n.isRunning = true

	// Start message processing
	go n.processJetStreamMessages()

	n.logger.Info("Successfully connected to NATS JetStream",
		zap.String("subject", subject),
		zap.String("consumer", consumer))

	return nil
}

// processJetStreamMessages processes messages from JetStream pull subscription
func (n *NATSConsumer) processJetStreamMessages() {
	n.logger.Info("Starting JetStream message processing")

	for n.isRunning {
		// Fetch messages in batches
		msgs, err := n.sub.Fetch(10, nats.MaxWait(5*time.Second))
		if err != nil {
			if err == nats.ErrTimeout {
				n.logger.Debug("No messages available, continuing...")
				continue
			}
			n.logger.Error("Failed to fetch messages", zap.Error(err))
			continue
		}

		n.logger.Debug("Fetched messages from JetStream", zap.Int("count", len(msgs)))

		for _, msg := range msgs {
			n.handleMessage(msg)
		}
	}

	n.logger.Info("Stopped JetStream message processing")
}

// setupCoreNATSSubscription sets up core NATS subscription
func (n *NATSConsumer) setupCoreNATSSubscription() error {
	subject := fmt.Sprintf("%s.events", n.config.SubjectPrefix)
	queueGroup := n.config.ConsumerGroup

	n.logger.Info("Setting up core NATS subscription",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	sub, err := n.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		n.handleMessage(msg)
	})

	if err != nil {
		n.logger.Error("Failed to subscribe to subject", zap.Error(err))
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	n.sub = sub
	n.isRunning = true

	n.logger.Info("Successfully connected to core NATS",
		zap.String("subject", subject),
		zap.String("queue_group", queueGroup))

	return nil
}

// handleMessage handles incoming NATS messages
func (n *NATSConsumer) handleMessage(msg *nats.Msg) {
	var event entity.TransferEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		n.logger.Error("Failed to unmarshal transfer event", zap.Error(err))
		if msg.Reply != "" {
			msg.Respond([]byte("ERROR: Failed to unmarshal"))
		}
		return
	}
	if event.Wallet == "" {
		n.logger.Warn("Dropping transfer event without wallet address",
			zap.String("signature", event.Transfer.Signature))
		if msg.Reply != "" {
			msg.Ack()
		}
		return
	}

	n.logger.Debug("Processing transfer event",
		zap.String("wallet", event.Wallet),
		zap.String("signature", event.Transfer.Signature))

	// Send to message channel
	select {
	case n.msgChan <- &event:
		// Acknowledge if it's a JetStream message
		if msg.Reply != "" {
			msg.Ack()
		}
	default:
		// Channel is full
		n.logger.Warn("Message channel is full, dropping message",
			zap.String("signature", event.Transfer.Signature))
		if msg.Reply != "" {
			msg.Nak()
		}
	}
}

// Disconnect disconnects from NATS server
func (n *NATSConsumer) Disconnect() error {
	n.isRunning = false

	if n.sub != nil {
		n.sub.Unsubscribe()
		n.sub = nil
	}
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
	close(n.msgChan)
	n.logger.Info("Disconnected from NATS")
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSConsumer) IsConnected() bool {
	return n.isRunning && n.conn != nil && n.conn.IsConnected()
}

// GetMessageChannel returns the message channel
func (n *NATSConsumer) GetMessageChannel() <-chan *entity.TransferEvent {
	return n.msgChan
}
