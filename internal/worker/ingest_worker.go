package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/panjf2000/ants/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"docuchat/internal/app"
	"docuchat/internal/platform/rabbitmq"
)

// IngestWorker consumes dispatched ingestion tasks and runs the pipeline on a
// bounded pool. Requests never wait on ingestion; they poll the job row.
type IngestWorker struct {
	conn      *amqp.Connection
	ingester  *app.IngestService
	queueName string
	pool      *ants.Pool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewIngestWorker(conn *amqp.Connection, ingester *app.IngestService, queueName string, poolSize int) (*IngestWorker, error) {
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create ingest pool failed: %w", err)
	}
	return &IngestWorker{
		conn:      conn,
		ingester:  ingester,
		queueName: queueName,
		pool:      pool,
	}, nil
}

func (w *IngestWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare ingest queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume ingest queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.dispatch(workerCtx, d)
			}
		}
	}()

	return nil
}

func (w *IngestWorker) dispatch(ctx context.Context, d amqp.Delivery) {
	var task rabbitmq.IngestTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		log.Printf("worker decode ingest task failed: %v", err)
		_ = d.Nack(false, false)
		return
	}

	submitErr := w.pool.Submit(func() {
		if err := w.ingester.Ingest(ctx, task.DocumentID); err != nil {
			// Failure is already recorded on the job row; the message is
			// consumed either way since there is no automatic retry.
			log.Printf("worker ingest document %d failed: %v", task.DocumentID, err)
		}
		_ = d.Ack(false)
	})
	if submitErr != nil {
		log.Printf("worker submit ingest task failed: %v", submitErr)
		_ = d.Nack(false, true)
	}
}

func (w *IngestWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.pool.Release()
}
