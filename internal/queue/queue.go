package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"rentradar/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// ListingQueue is an in-memory queue of rental listing batches waiting to
// be ingested into the store.
type ListingQueue struct {
	items    chan []*models.Property
	done     chan struct{}
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	logger   *logrus.Logger
	handlers []func([]*models.Property) error
}

// NewListingQueue creates a new listing queue with the specified buffer size.
func NewListingQueue(bufferSize int, logger *logrus.Logger) *ListingQueue {
	if logger == nil {
		logger = logrus.New()
	}
	return &ListingQueue{
		items:    make(chan []*models.Property, bufferSize),
		done:     make(chan struct{}),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.Property) error, 0),
	}
}

// Push adds a batch of listings to the queue.
func (q *ListingQueue) Push(listings []*models.Property) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- listings:
		q.logger.WithField("batch_size", len(listings)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch.
func (q *ListingQueue) Subscribe(handler func([]*models.Property) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing items in the queue.
func (q *ListingQueue) Start() {
	go q.process()
}

func (q *ListingQueue) process() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			q.processBatch(batch)
		}
	}
}

// processBatch sends the batch to all subscribed handlers.
func (q *ListingQueue) processBatch(batch []*models.Property) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added.
func (q *ListingQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue.
func (q *ListingQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *ListingQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
