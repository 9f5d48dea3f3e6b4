package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/config"
	"github.com/sketchwork/assessment-service/internal/models"
)

// EventPublisher announces grading outcomes. Publishing is best-effort
// everywhere it is called: a broker outage must never fail a request that
// already persisted its records.
type EventPublisher interface {
	PublishSubmissionGraded(ctx context.Context, event *models.SubmissionGradedEvent) error
	PublishGradingRetry(ctx context.Context, event *models.GradingRetryEvent) error
	Close() error
}

type RabbitMQClient struct {
	conn             *amqp091.Connection
	channel          *amqp091.Channel
	exchange         string
	gradedRoutingKey string
	retryRoutingKey  string
	logger           zerolog.Logger
}

func NewRabbitMQClient(cfg config.RabbitMQConfig, logger zerolog.Logger) (*RabbitMQClient, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	for queueName, routingKey := range map[string]string{
		cfg.GradedQueue: cfg.GradedRoutingKey,
		cfg.RetryQueue:  cfg.RetryRoutingKey,
	} {
		queue, err := channel.QueueDeclare(
			queueName, // name
			true,      // durable
			false,     // delete when unused
			false,     // exclusive
			false,     // no-wait
			nil,       // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
		}

		err = channel.QueueBind(
			queue.Name,   // queue name
			routingKey,   // routing key
			cfg.Exchange, // exchange
			false,        // no-wait
			nil,          // arguments
		)
		if err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue %s: %w", queueName, err)
		}
	}

	logger.Info().
		Str("exchange", cfg.Exchange).
		Str("graded_queue", cfg.GradedQueue).
		Str("retry_queue", cfg.RetryQueue).
		Msg("Connected to RabbitMQ")

	return &RabbitMQClient{
		conn:             conn,
		channel:          channel,
		exchange:         cfg.Exchange,
		gradedRoutingKey: cfg.GradedRoutingKey,
		retryRoutingKey:  cfg.RetryRoutingKey,
		logger:           logger,
	}, nil
}

// Channel exposes the underlying AMQP channel so the retry worker's
// consumer can share the connection.
func (c *RabbitMQClient) Channel() *amqp091.Channel {
	return c.channel
}

func (c *RabbitMQClient) PublishSubmissionGraded(ctx context.Context, event *models.SubmissionGradedEvent) error {
	if err := c.publish(ctx, c.gradedRoutingKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("submission_id", event.SubmissionID).
		Int("points_earned", event.PointsEarned).
		Msg("Submission graded event published")

	return nil
}

func (c *RabbitMQClient) PublishGradingRetry(ctx context.Context, event *models.GradingRetryEvent) error {
	if err := c.publish(ctx, c.retryRoutingKey, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("submission_id", event.SubmissionID).
		Str("reason", event.Reason).
		Msg("Grading retry event published")

	return nil
}

func (c *RabbitMQClient) publish(ctx context.Context, routingKey string, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (c *RabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}
