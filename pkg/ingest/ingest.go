package ingest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/japaniel/mecab/pkg/db"
	"github.com/japaniel/mecab/pkg/mecab"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Config configures an Ingester.
type Config struct {
	// Analyzer is used for every Analyzer in the pool.
	Analyzer mecab.Options
	// Workers is the number of concurrent parses, and of Analyzers. Default 4.
	Workers int
	// DB, when set, receives every parsed document. It must be initialized
	// with db.InitDB.
	DB *sql.DB
	// BatchSize is the number of documents per write transaction. Default 50.
	BatchSize int
	// FlushInterval bounds how long a parsed document waits to be written.
	// Default 100ms.
	FlushInterval time.Duration
	// OnProgress is called with the number of parsed inputs and the total.
	// Calls are serialized but come from worker goroutines.
	OnProgress func(done, total int)
	// Logger receives debug summaries and warnings about failed ingests.
	// nil means no logging.
	Logger *zap.Logger
}

// Input is one text to analyze. Title and URL are stored alongside it.
type Input struct {
	Title string
	URL   string
	Text  string
}

// Result is the analysis of the Input at the same index.
type Result struct {
	Input  Input
	Tokens []mecab.Token
	// DocumentID is the stored document, or 0 without a DB.
	DocumentID int64
}

// Ingester parses many texts concurrently. Each in-flight parse holds its own
// Analyzer, so no Analyzer is ever used by two goroutines at once.
type Ingester struct {
	cfg       Config
	log       *zap.Logger
	analyzers *AnalyzerPool
}

// NewIngester builds the Analyzer pool. Close releases it.
func NewIngester(cfg Config) (*Ingester, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 100 * time.Millisecond
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Analyzer.Logger == nil {
		cfg.Analyzer.Logger = log
	}

	pool, err := NewAnalyzerPool(cfg.Workers, cfg.Analyzer)
	if err != nil {
		return nil, err
	}
	return &Ingester{cfg: cfg, log: log, analyzers: pool}, nil
}

// Close closes the Ingester's Analyzers.
func (ig *Ingester) Close() error {
	return ig.analyzers.Close()
}

// Ingest parses every input and, with a DB configured, stores the results.
// Results are in input order. The first parse or write error cancels the
// remaining work and is returned. Nothing is stored unless every input parses,
// and documents already committed are deleted again if a later write fails.
func (ig *Ingester) Ingest(ctx context.Context, inputs []Input) ([]Result, error) {
	results := make([]Result, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
		cancel()
	}

	var (
		progressMu sync.Mutex
		done       int
	)
	progress := func() {
		if ig.cfg.OnProgress == nil {
			return
		}
		progressMu.Lock()
		done++
		ig.cfg.OnProgress(done, len(inputs))
		progressMu.Unlock()
	}

	wp := NewWorkerPool(ig.cfg.Workers, ig.cfg.Workers*2)
	wp.Start(ctx)

	for i, in := range inputs {
		err := wp.SubmitCtx(ctx, func(ctx context.Context) error {
			a, err := ig.analyzers.Acquire(ctx)
			if err != nil {
				fail(err)
				return err
			}
			tokens, err := a.Parse(in.Text)
			ig.analyzers.Release(a)
			if err != nil {
				err = errors.Wrapf(err, "input %d", i)
				fail(err)
				return err
			}
			results[i] = Result{Input: in, Tokens: tokens}
			progress()
			return nil
		})
		if err != nil {
			fail(err)
			break
		}
	}

	wp.Close()
	if err := ctx.Err(); err != nil {
		// workers stop on cancellation and leave queued inputs unparsed
		fail(err)
	}

	errMu.Lock()
	err := firstErr
	errMu.Unlock()
	if err == nil && ig.cfg.DB != nil {
		err = ig.persist(results)
	}
	if err != nil {
		ig.log.Warn("ingest failed", zap.Int("inputs", len(inputs)), zap.Error(err))
		return nil, err
	}
	ig.log.Debug("ingest complete", zap.Int("inputs", len(inputs)))
	return results, nil
}

// persist writes results through a BatchWriter and fills in their
// DocumentIDs. On failure the documents of batches that did commit are
// deleted.
func (ig *Ingester) persist(results []Result) error {
	engine := ig.analyzers.Engine().String()
	bw := NewBatchWriter(ig.cfg.DB, ig.cfg.BatchSize, ig.cfg.FlushInterval, ig.log)

	// only touched by the committer goroutine until bw.Close returns
	var committed []int64
	var err error
	for i := range results {
		r := &results[i]
		doc := db.Document{Engine: engine, Title: r.Input.Title, URL: r.Input.URL, Text: r.Input.Text}
		var id int64
		err = bw.SubmitNotify(func(tx *sql.Tx) error {
			var err error
			id, err = db.SaveDocument(tx, doc, r.Tokens)
			return errors.Wrapf(err, "save input %d", i)
		}, func() {
			r.DocumentID = id
			committed = append(committed, id)
		})
		if err != nil {
			break
		}
	}
	if cerr := bw.Close(); err == nil {
		err = cerr
	}
	if err == nil || len(committed) == 0 {
		return err
	}

	if derr := ig.deleteDocuments(committed); derr != nil {
		ig.log.Warn("could not remove partially stored documents",
			zap.Int64s("documents", committed), zap.Error(derr))
	}
	return err
}

func (ig *Ingester) deleteDocuments(ids []int64) error {
	tx, err := ig.cfg.DB.Begin()
	if err != nil {
		return errors.Wrap(err, "begin cleanup tx")
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()
	if err := db.DeleteDocuments(tx, ids); err != nil {
		return err
	}
	return tx.Commit()
}
