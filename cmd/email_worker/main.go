package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/movie-review-api/config"
	"github.com/oksasatya/movie-review-api/pkg/helpers"
	"github.com/oksasatya/movie-review-api/pkg/mailer"
)

// prefetch keeps dispatch fair across several workers.
const prefetch = 16

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+" email worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}

	mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	if err != nil {
		logger.Fatalf("mailgun not configured: %v", err)
	}
	q, err := mailer.DialQueue(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.Fatalf("rabbitmq: %v", err)
	}
	defer q.Close()

	msgs, err := q.Consume(prefetch)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", q.Name).Info("email worker listening")
	mailer.NewWorker(mg, logger).Run(ctx, msgs)
	logger.Info("email worker stopped")
}
