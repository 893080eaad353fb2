package storage

import (
	"context"
	"errors"
	"runtime"
	"sync"

	log "github.com/sirupsen/logrus"
)

var ErrRepositoryClosed = errors.New("async repository is closed")

// AsyncRepository queues records for a pool of workers writing to a Saver.
type AsyncRepository struct {
	repo   Saver
	ch     chan interface{ ToBytes() ([]byte, error) }
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func NewAsyncRepository(repo Saver, buffer, workers int) *AsyncRepository {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	ar := &AsyncRepository{
		repo:   repo,
		ch:     make(chan interface{ ToBytes() ([]byte, error) }, buffer),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		ar.wg.Add(1)
		go ar.worker()
	}
	return ar
}

func (a *AsyncRepository) worker() {
	defer a.wg.Done()
	for msg := range a.ch {
		if err := a.repo.Save(msg); err != nil {
			log.WithField("err", err).Error("Failed to save export record")
		}
	}
}

// Save queues the record. It blocks while the queue is full.
func (a *AsyncRepository) Save(m interface{ ToBytes() ([]byte, error) }) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrRepositoryClosed
	}

	select {
	case a.ch <- m:
		return nil
	case <-a.ctx.Done():
		return ErrRepositoryClosed
	}
}

// Close stops accepting records and waits until the queued ones are written.
func (a *AsyncRepository) Close() {
	a.once.Do(func() {
		a.cancel()
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()
		a.wg.Wait()
	})
}
