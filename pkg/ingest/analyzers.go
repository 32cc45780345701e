package ingest

import (
	"context"

	"github.com/japaniel/mecab/pkg/mecab"
	"github.com/pkg/errors"
)

// AnalyzerPool hands out Analyzers one holder at a time. Every Analyzer is
// built from the same options, so any of them gives the same result.
type AnalyzerPool struct {
	free chan *mecab.Analyzer
	all  []*mecab.Analyzer
}

// NewAnalyzerPool builds n Analyzers with opts.
func NewAnalyzerPool(n int, opts mecab.Options) (*AnalyzerPool, error) {
	if n <= 0 {
		n = 1
	}
	p := &AnalyzerPool{free: make(chan *mecab.Analyzer, n)}
	for i := 0; i < n; i++ {
		a, err := mecab.New(opts)
		if err != nil {
			_ = p.Close()
			return nil, errors.Wrapf(err, "analyzer %d of %d", i+1, n)
		}
		p.all = append(p.all, a)
		p.free <- a
	}
	return p, nil
}

// Acquire waits for a free Analyzer. The caller must Release it.
func (p *AnalyzerPool) Acquire(ctx context.Context) (*mecab.Analyzer, error) {
	select {
	case a := <-p.free:
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a to the pool.
func (p *AnalyzerPool) Release(a *mecab.Analyzer) {
	p.free <- a
}

// Size is the number of Analyzers in the pool.
func (p *AnalyzerPool) Size() int { return len(p.all) }

// Engine returns the engine shared by every Analyzer in the pool.
func (p *AnalyzerPool) Engine() mecab.Engine {
	if len(p.all) == 0 {
		return ""
	}
	return p.all[0].Engine()
}

// Close closes every Analyzer and returns the first error.
func (p *AnalyzerPool) Close() error {
	var first error
	for _, a := range p.all {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
