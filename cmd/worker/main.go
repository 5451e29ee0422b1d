package main

import (
	"cipherdrive/config"
	"cipherdrive/internal/mq"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// The audit worker drains the audit queue into an append-only log
// file, the durable sink beside the database table. Failed writes are
// requeued so nothing is lost across restarts.
func main() {
	config.InitConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("audit worker started")
	if err := runAuditSink(ctx); err != nil {
		log.Fatalf("audit worker stopped: %v", err)
	}
}

func runAuditSink(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.DeclareTopology(); err != nil {
		return err
	}
	deliveries, err := client.ConsumeAudit()
	if err != nil {
		return err
	}

	sink, err := os.OpenFile(config.AppConfig.AuditFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer sink.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if _, err := sink.Write(append(d.Body, '\n')); err != nil {
				log.Printf("write audit line failed: %v", err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
