package ingest

import (
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// WriteFunc performs database writes inside a batch transaction.
type WriteFunc func(tx *sql.Tx) error

type pendingWrite struct {
	fn        WriteFunc
	committed func()
}

// BatchWriter buffers write operations and commits them in batches, one
// transaction per batch, on a single goroutine.
type BatchWriter struct {
	db   *sql.DB
	size int
	log  *zap.Logger

	mu     sync.Mutex
	buf    []pendingWrite
	closed bool

	batches  chan []pendingWrite
	stop     chan struct{}
	loopDone chan struct{}
	commitWG sync.WaitGroup

	// err is the first commit failure. Protected by errMu.
	errMu sync.Mutex
	err   error
}

// NewBatchWriter creates a BatchWriter flushing every size writes and, if
// flushInterval > 0, at least that often.
func NewBatchWriter(db *sql.DB, size int, flushInterval time.Duration, log *zap.Logger) *BatchWriter {
	if size <= 0 {
		size = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	bw := &BatchWriter{
		db:       db,
		size:     size,
		log:      log,
		buf:      make([]pendingWrite, 0, size),
		batches:  make(chan []pendingWrite, 2),
		stop:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	bw.commitWG.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		go bw.loop(flushInterval)
	} else {
		close(bw.loopDone)
	}
	return bw
}

// Submit enqueues w. It blocks while the committer is behind by more than
// two batches.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	return bw.SubmitNotify(w, nil)
}

// SubmitNotify is Submit with a callback run on the committer goroutine once
// the batch holding w has committed. It is not called if the batch fails.
func (bw *BatchWriter) SubmitNotify(w WriteFunc, committed func()) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, pendingWrite{fn: w, committed: committed})
	if len(bw.buf) >= bw.size {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]pendingWrite, 0, bw.size)
	bw.batches <- batch
}

func (bw *BatchWriter) loop(every time.Duration) {
	defer close(bw.loopDone)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-bw.stop:
			return
		case <-t.C:
			bw.mu.Lock()
			if !bw.closed {
				bw.flushLocked()
			}
			bw.mu.Unlock()
		}
	}
}

func (bw *BatchWriter) committer() {
	defer bw.commitWG.Done()
	for batch := range bw.batches {
		if err := bw.commit(batch); err != nil {
			bw.log.Warn("batch commit failed", zap.Int("writes", len(batch)), zap.Error(err))
			bw.errMu.Lock()
			if bw.err == nil {
				bw.err = err
			}
			bw.errMu.Unlock()
		}
	}
}

func (bw *BatchWriter) commit(batch []pendingWrite) error {
	tx, err := bw.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin batch tx")
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	for _, w := range batch {
		if err := w.fn(tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "commit batch of %d writes", len(batch))
	}
	for _, w := range batch {
		if w.committed != nil {
			w.committed()
		}
	}
	return nil
}

// Close flushes pending writes, waits for them to commit and returns the
// first commit error, if any.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	bw.flushLocked()
	bw.mu.Unlock()

	close(bw.stop)
	<-bw.loopDone
	close(bw.batches)
	bw.commitWG.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.err
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
