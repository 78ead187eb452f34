package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IngestTask is the message dispatched to the ingestion queue. The worker
// looks everything else up by document id.
type IngestTask struct {
	DocumentID uint   `json:"document_id"`
	TaskID     string `json:"task_id"`
}

type IngestPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewIngestPublisher(conn *amqp.Connection, queueName string) *IngestPublisher {
	return &IngestPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

// Publish dispatches an ingestion task. Fire-and-forget from the caller's
// point of view: completion is observed by polling the job row.
func (p *IngestPublisher) Publish(ctx context.Context, documentID uint, taskID string) error {
	task := IngestTask{DocumentID: documentID, TaskID: taskID}
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open publish channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare ingest queue failed: %w", err)
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal ingest task failed: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish ingest task failed: %w", err)
	}
	return nil
}
