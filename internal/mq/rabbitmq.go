package mq

import (
	"cipherdrive/config"
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingAudit = "audit"
)

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

var publisherMu sync.Mutex
var publisher *Client

func Dial() (*Client, error) {
	conn, err := amqp.Dial(config.AppConfig.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns a shared publisher, redialing when the previous
// connection died.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

// DeclareTopology declares the audit exchange and queue.
func (c *Client) DeclareTopology() error {
	if err := c.Channel.ExchangeDeclare(
		config.AppConfig.AuditExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		config.AppConfig.AuditQueue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	return c.Channel.QueueBind(
		config.AppConfig.AuditQueue,
		RoutingAudit,
		config.AppConfig.AuditExchange,
		false,
		nil,
	)
}

// PublishAudit fans an audit event out to the audit exchange.
func (c *Client) PublishAudit(ctx context.Context, body []byte) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	return c.Channel.PublishWithContext(
		ctx,
		config.AppConfig.AuditExchange,
		RoutingAudit,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
}

// ConsumeAudit delivers audit events to the file sink worker.
func (c *Client) ConsumeAudit() (<-chan amqp.Delivery, error) {
	if err := c.Channel.Qos(16, 0, false); err != nil {
		return nil, err
	}
	return c.Channel.Consume(
		config.AppConfig.AuditQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}
