package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// errMalformed marks payloads that can never be processed.
var errMalformed = errors.New("malformed repair event")

// Reconciler removes the duplicate left behind by a failed role escalation.
type Reconciler interface {
	Reconcile(ctx context.Context, principalID string) error
}

// RepairConsumer listens on PrincipalRepairQueue and hands every event to
// the Reconciler.
type RepairConsumer struct {
	URL        string
	Reconciler Reconciler
	Log        logrus.FieldLogger
}

// Run connects to the broker, declares the durable queue and consumes until
// ctx is cancelled.  Connection failures are retried with exponential
// backoff capped at 30 seconds.
func (c *RepairConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.WithError(err).Warnf("repair-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.WithError(err).Warn("repair-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *RepairConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.Log.WithError(err).Warn("repair-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(PrincipalRepairQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(PrincipalRepairQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.dispatch(ctx, d)
		}
	}
}

// dispatch acks processed events.  Malformed events are dropped; other
// failures are requeued once and dropped on the second delivery so a broken
// record cannot spin the consumer.
func (c *RepairConsumer) dispatch(ctx context.Context, d amqp.Delivery) {
	err := c.handleMessage(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errMalformed) || d.Redelivered:
		c.Log.WithError(err).Error("repair-consumer: dropping event")
		_ = d.Nack(false, false)
	default:
		c.Log.WithError(err).Warn("repair-consumer: requeueing event")
		_ = d.Nack(false, true)
	}
}

func (c *RepairConsumer) handleMessage(ctx context.Context, body []byte) error {
	var ev PrincipalRepairEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.PrincipalID == "" {
		return fmt.Errorf("%w: empty principal_id", errMalformed)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Reconciler.Reconcile(ctx, ev.PrincipalID); err != nil {
		return fmt.Errorf("reconcile %s: %w", ev.PrincipalID, err)
	}
	c.Log.WithField("principal_id", ev.PrincipalID).Info("repair-consumer: principal reconciled")
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
