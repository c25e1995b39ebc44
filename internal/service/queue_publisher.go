package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	q "github.com/iliyamo/furniture-catalog/internal/queue"
)

// RepairPublisher publishes principal repair events to RabbitMQ.  Each call
// opens its own connection; repairs are rare and never on a hot path.
type RepairPublisher struct {
	url string
	log logrus.FieldLogger
}

func NewRepairPublisher(url string, log logrus.FieldLogger) *RepairPublisher {
	return &RepairPublisher{url: url, log: log}
}

// PublishPrincipalRepair sends event to the durable repair queue as a
// persistent message.  Errors are logged and returned.
func (p *RepairPublisher) PublishPrincipalRepair(ctx context.Context, event q.PrincipalRepairEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.WithError(err).Error("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.WithError(err).Error("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(q.PrincipalRepairQueue, true, false, false, false, nil); err != nil {
		p.log.WithError(err).Error("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.PrincipalRepairQueue, false, false, pub); err != nil {
		p.log.WithError(err).Error("rabbitmq: publish failed")
		return err
	}
	return nil
}
