package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/logger"
)

// QueueName is the durable queue drained by cmd/mailer
const QueueName = "email_jobs"

// QueueMailer publishes messages to RabbitMQ instead of sending them inline.
type QueueMailer struct {
	conn *amqp.Connection
	mu   sync.Mutex
	ch   *amqp.Channel
}

func NewQueueMailer(url string) (*QueueMailer, error) {
	if url == "" {
		return nil, errors.New("RABBITMQ_URL is required for the amqp mail transport")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	q := &QueueMailer{conn: conn}
	if _, err := q.channel(); err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

// channel returns the cached channel, reopening it after a broker-side close.
func (q *QueueMailer) channel() (*amqp.Channel, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ch != nil {
		return q.ch, nil
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("error opening rabbitmq channel: %w", err)
	}
	if err := DeclareQueue(ch); err != nil {
		ch.Close()
		return nil, err
	}
	q.ch = ch
	return ch, nil
}

func (q *QueueMailer) Send(ctx context.Context, msg domain.EmailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := Render(msg); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email job: %w", err)
	}

	ch, err := q.channel()
	if err != nil {
		return err
	}
	err = ch.Publish(
		"",        // default exchange
		QueueName, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		q.mu.Lock()
		q.ch = nil
		q.mu.Unlock()
		return fmt.Errorf("publish email job: %w", err)
	}
	return nil
}

func (q *QueueMailer) Close() error {
	q.mu.Lock()
	if q.ch != nil {
		q.ch.Close()
		q.ch = nil
	}
	q.mu.Unlock()
	return q.conn.Close()
}

// DeclareQueue declares the durable email queue. Publisher and consumer share it.
func DeclareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		QueueName,
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

// HandleDelivery decodes one queued job and sends it. A false return means
// the job should be requeued.
func HandleDelivery(ctx context.Context, sender domain.Mailer, body []byte) (ok bool, requeue bool) {
	var msg domain.EmailMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Log.Error("Dropping malformed email job", "error", err)
		return false, false
	}
	if err := sender.Send(ctx, msg); err != nil {
		logger.Log.Warn("Email delivery failed", "template", msg.Template, "error", err)
		return false, true
	}
	return true, false
}
