package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue wraps an AMQP connection and a durable queue used for email jobs.
// Publishing is serialized because a channel is shared by all requests.
type Queue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	mu   sync.Mutex
	Name string
}

// DialQueue connects to RabbitMQ and declares the durable queue name.
func DialQueue(url, name string) (*Queue, error) {
	if url == "" || name == "" {
		return nil, errors.New("rabbitmq url and queue name are required")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_, err = ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Queue{conn: conn, ch: ch, Name: name}, nil
}

func (q *Queue) Close() {
	if q == nil {
		return
	}
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		_ = q.conn.Close()
	}
}

// Publish sends job as a persistent JSON message to the queue.
func (q *Queue) Publish(ctx context.Context, job EmailJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.PublishWithContext(ctx,
		"",     // default exchange
		q.Name, // routing key = queue
		false,  // mandatory
		false,  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

// Consume starts a manual-ack consumer with the given prefetch.
func (q *Queue) Consume(prefetch int) (<-chan amqp.Delivery, error) {
	if err := q.ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}
	return q.ch.Consume(q.Name, "", false, false, false, false, nil)
}
