package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/movie-review-api/pkg/helpers"
	"github.com/oksasatya/movie-review-api/pkg/mailer/templates"
)

// Sender is satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Disposition tells the consumer what to do with a delivery.
type Disposition int

const (
	Ack Disposition = iota
	Drop
	Requeue
)

var errNoRecipient = errors.New("email job has no recipient")

// Worker renders queued EmailJobs and hands them to a Sender.
type Worker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Process handles one message body. Undecodable or unrenderable jobs are
// dropped; send failures are requeued.
func (w *Worker) Process(ctx context.Context, body []byte) Disposition {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email message")
		return Drop
	}
	if job.To == "" {
		w.Logger.WithError(errNoRecipient).WithField("template", job.Template).Warn("bad email message")
		return Drop
	}
	log := w.Logger.WithFields(logrus.Fields{"to": helpers.MaskEmail(job.To), "template": job.Template})

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := templates.Render(job.Template, job.Data)
		if err != nil {
			log.WithError(err).Error("render email failed")
			return Drop
		}
		subject, text, html = s, t, h
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(sendCtx, job.To, subject, text, html); err != nil {
		log.WithError(err).Warn("send email failed")
		return Requeue
	}
	log.Info("email sent")
	return Ack
}

// Run consumes deliveries until ctx is done or the channel closes.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				return
			}
			switch w.Process(ctx, msg.Body) {
			case Ack:
				_ = msg.Ack(false)
			case Drop:
				_ = msg.Nack(false, false)
			case Requeue:
				_ = msg.Nack(false, true)
			}
		}
	}
}
