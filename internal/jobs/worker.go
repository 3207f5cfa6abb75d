package jobs

import (
	"context"
	"log"
	"time"

	"github.com/aditya-singh004/Dev-Doc-AI/internal/telemetry"
)

// flushTimeout bounds the final run after the worker is stopped.
const flushTimeout = 30 * time.Second

// JobProcessor defines the interface for processing jobs
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker represents a background job worker
type Worker struct {
	name         string
	processor    JobProcessor
	pollInterval time.Duration
	flushOnStop  bool
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewWorker creates a new Worker instance. With flushOnStop the processor
// runs once more after the worker is stopped, so pending work is not lost
// on shutdown.
func NewWorker(name string, processor JobProcessor, pollInterval time.Duration, flushOnStop bool) *Worker {
	return &Worker{
		name:         name,
		processor:    processor,
		pollInterval: pollInterval,
		flushOnStop:  flushOnStop,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start begins the worker's polling loop
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("%s worker started with poll interval: %v", w.name, w.pollInterval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("%s worker stopped: context cancelled", w.name)
			w.flush()
			return
		case <-w.stopChan:
			log.Printf("%s worker stopped: stop signal received", w.name)
			w.flush()
			return
		case <-ticker.C:
			if err := w.processor.ProcessJobs(ctx); err != nil {
				log.Printf("Error processing %s jobs: %v", w.name, err)
				telemetry.CaptureError(ctx, err)
			}
		}
	}
}

func (w *Worker) flush() {
	if !w.flushOnStop {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("Error flushing %s jobs: %v", w.name, err)
		telemetry.CaptureError(ctx, err)
	}
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	select {
	case <-w.stopChan:
	default:
		close(w.stopChan)
	}
	<-w.doneChan
	log.Printf("%s worker shutdown complete", w.name)
}
