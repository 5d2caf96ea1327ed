package pushqueue

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/retry"

	"github.com/CortinezO98/MisVigencias/internal/config"
)

// Publisher owns the AMQP connection used by the push channel. Declared
// durable so queued notifications survive a broker restart; the mobile
// gateway consumes on the other side.
type Publisher struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	exchange      string
	queue         string
	contentType   string
	retryStrategy retry.Strategy
}

func NewPublisher(ctx context.Context, cfg config.RabbitMQConfig, strategy retry.Strategy) (*Publisher, error) {
	var conn *amqp091.Connection
	var err error

	err = retry.DoContext(ctx, strategy, func() error {
		conn, err = amqp091.Dial(fmt.Sprintf(
			"amqp://%s:%s@%s:%d/%s",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.VHost,
		))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("error creating channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("error declaring exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return nil, fmt.Errorf("error declaring queue '%s': %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(
		cfg.Queue,
		cfg.Queue,
		cfg.Exchange,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("error binding queue '%s' to exchange: %w", cfg.Queue, err)
	}

	return &Publisher{
		conn:          conn,
		channel:       ch,
		exchange:      cfg.Exchange,
		queue:         cfg.Queue,
		contentType:   "application/json",
		retryStrategy: strategy,
	}, nil
}

// PublishWithRetry publishes one message to the push queue.
func (p *Publisher) PublishWithRetry(ctx context.Context, body []byte) error {
	return retry.DoContext(ctx, p.retryStrategy, func() error {
		return p.channel.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
			ContentType: p.contentType,
			Body:        body,
		})
	})
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
