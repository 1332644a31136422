package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/streadway/amqp"

	"skillmatch-backend/config"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/email"
	"skillmatch-backend/pkg/logger"
)

const numWorkers = 3

// mailer drains the email_jobs queue filled by the API when MAIL_TRANSPORT=amqp.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	smtpMailer := email.NewSMTPMailer(cfg)
	if !smtpMailer.IsConfigured() {
		logger.Log.Error("SMTP is not configured; refusing to consume email jobs")
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Error("Failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Error("Failed to open rabbitmq channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	if err := email.DeclareQueue(ch); err != nil {
		logger.Log.Error("Failed to declare email queue", "error", err)
		os.Exit(1)
	}
	// one unacked job per worker
	if err := ch.Qos(numWorkers, 0, false); err != nil {
		logger.Log.Error("Failed to set prefetch", "error", err)
		os.Exit(1)
	}

	msgs, err := ch.Consume(
		email.QueueName, // queue name
		"",              // consumer tag
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		logger.Log.Error("Failed to consume email queue", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Info("Mailer started", "queue", email.QueueName, "workers", numWorkers)
	runWorkers(ctx, msgs, smtpMailer, numWorkers)
	logger.Log.Info("Mailer exiting")
}

// runWorkers blocks until ctx is done or the delivery channel closes.
func runWorkers(ctx context.Context, msgs <-chan amqp.Delivery, sender domain.Mailer, n int) {
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, open := <-msgs:
					if !open {
						logger.Log.Warn("Delivery channel closed", "worker", id)
						return
					}
					ok, requeue := email.HandleDelivery(ctx, sender, d.Body)
					if ok {
						_ = d.Ack(false)
						continue
					}
					// redelivered jobs that fail again are dropped
					_ = d.Nack(false, requeue && !d.Redelivered)
				}
			}
		}(i + 1)
	}
	wg.Wait()
}
