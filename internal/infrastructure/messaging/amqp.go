package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPConfig holds AMQP publisher configuration
type AMQPConfig struct {
	URL          string
	ExchangeName string
	RoutingKey   string
}

// AMQPPublisher publishes JSON events to a topic exchange
type AMQPPublisher struct {
	logger  *zap.Logger
	config  AMQPConfig
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(config AMQPConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	if config.URL == "" || config.ExchangeName == "" {
		return nil, fmt.Errorf("AMQP URL or exchange name not configured")
	}

	conn, err := amqp.DialConfig(config.URL, amqp.Config{
		Dial: amqp.DefaultDial(5 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP server: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		config.ExchangeName,
		"topic",
		true,  // Durable
		false, // Auto-delete
		false, // Internal
		false, // No-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", config.ExchangeName, err)
	}

	return &AMQPPublisher{
		logger:  logger,
		config:  config,
		conn:    conn,
		channel: channel,
	}, nil
}

// Publish encodes event as JSON and publishes it with the configured routing key
func (p *AMQPPublisher) Publish(ctx context.Context, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		p.config.ExchangeName,
		p.config.RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.config.ExchangeName, err)
	}

	if p.logger != nil {
		p.logger.Debug("event published",
			zap.String("exchange", p.config.ExchangeName),
			zap.String("routing_key", p.config.RoutingKey),
		)
	}
	return nil
}

// Close closes the channel and connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
