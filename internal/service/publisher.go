package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/office-operations/internal/config"
	"github.com/iliyamo/office-operations/internal/queue"
)

// PublishAttendanceRecorded ships one committed check-in or check-out to
// the attendance audit queue.  A connection is dialed per publish: the
// event rate is a handful per user per day, and a broker outage then costs
// exactly one audit line, never held broker state.  Errors are logged here
// and returned; callers treat the publish as best-effort because the
// durable write it describes has already succeeded.
func PublishAttendanceRecorded(ctx context.Context, event queue.AttendanceRecordedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode attendance event: %w", err)
	}

	conn, err := amqp.Dial(config.BrokerURL())
	if err != nil {
		log.Printf("audit: dial broker failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("audit: open channel failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Declare is idempotent; durable matches the consumer's declaration so
	// audit lines survive a broker restart.
	if _, err := ch.QueueDeclare(queue.AttendanceQueue, true, false, false, false, nil); err != nil {
		log.Printf("audit: declare %s failed: %v", queue.AttendanceQueue, err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue.AttendanceQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("audit: publish to %s failed: %v", queue.AttendanceQueue, err)
	}
	return err
}
