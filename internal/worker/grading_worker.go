package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sketchwork/assessment-service/internal/common"
	"github.com/sketchwork/assessment-service/internal/models"
	"github.com/sketchwork/assessment-service/internal/service"
	"github.com/sketchwork/assessment-service/internal/worker/queue"
)

// GradingWorker drains the grading retry queue and re-runs the grading
// sequence for submissions that persisted without a score.
type GradingWorker interface {
	Start(ctx context.Context) error
	Stop() error
}

// workerStats is bookkeeping for the shutdown log line.
type workerStats struct {
	totalProcessed int
	failedJobs     int
}

type gradingWorker struct {
	queueConsumer     queue.RabbitMQConsumer
	submissionService service.SubmissionService
	logger            zerolog.Logger
	stats             workerStats
	statsMutex        sync.Mutex
	startTime         time.Time
}

func NewGradingWorker(
	queueConsumer queue.RabbitMQConsumer,
	submissionService service.SubmissionService,
	logger zerolog.Logger,
) GradingWorker {
	return &gradingWorker{
		queueConsumer:     queueConsumer,
		submissionService: submissionService,
		logger:            logger,
		startTime:         time.Now(),
	}
}

func (w *gradingWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting grading retry worker...")

	msgs, err := w.queueConsumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Grading retry worker started successfully")
	return nil
}

func (w *gradingWorker) Stop() error {
	w.logger.Info().Msg("Stopping grading retry worker...")

	if err := w.queueConsumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	w.statsMutex.Lock()
	stats := w.stats
	w.statsMutex.Unlock()

	w.logger.Info().
		Int("total_processed", stats.totalProcessed).
		Int("failed_jobs", stats.failedJobs).
		Dur("uptime", time.Since(w.startTime)).
		Msg("Grading retry worker stopped")

	return nil
}

// processMessages handles retries sequentially. The consumer prefetches
// one message at a time, so a single slow regrade never piles up
// unacked deliveries.
func (w *gradingWorker) processMessages(ctx context.Context, msgs <-chan queue.RabbitMQMessage) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			if err := w.processMessage(ctx, msg); err != nil {
				w.logger.Error().Err(err).Msg("Failed to process grading retry")

				w.statsMutex.Lock()
				w.stats.failedJobs++
				w.statsMutex.Unlock()

				// Permanent failures are acked so a broken event does
				// not circle the queue forever.
				if isPermanentError(err) {
					if ackErr := msg.Ack(false); ackErr != nil {
						w.logger.Error().Err(ackErr).Msg("Failed to ack message")
					}
					continue
				}

				if nackErr := msg.Nack(false, true); nackErr != nil {
					w.logger.Error().Err(nackErr).Msg("Failed to nack message")
				}
				continue
			}

			if err := msg.Ack(false); err != nil {
				w.logger.Error().Err(err).Msg("Failed to ack message")
			}

			w.statsMutex.Lock()
			w.stats.totalProcessed++
			w.statsMutex.Unlock()
		}
	}
}

func (w *gradingWorker) processMessage(ctx context.Context, msg queue.RabbitMQMessage) error {
	var event models.GradingRetryEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}

	if strings.TrimSpace(event.SubmissionID) == "" {
		return permanent(errors.New("empty submission_id"))
	}

	w.logger.Info().
		Str("submission_id", event.SubmissionID).
		Str("reason", event.Reason).
		Msg("Processing grading retry")

	err := w.submissionService.RegradeSubmission(ctx, event.SubmissionID)
	if err != nil {
		// A vanished submission or one with no image will never grade;
		// requeueing those only burns grader calls.
		if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrValidation) {
			return permanent(err)
		}
		return err
	}

	return nil
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
