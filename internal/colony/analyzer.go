package colony

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Job describes one image to analyze.
type Job struct {
	// Source names the image in the result, typically its file name.
	Source string

	Image  image.Image
	Params Params
}

// PreprocessFunc adjusts an image before detection. It must be
// deterministic.
type PreprocessFunc func(img image.Image, p Params) image.Image

// Analyzer runs detection off the caller's goroutine and records results
// in a History.
type Analyzer struct {
	history    *History
	preprocess PreprocessFunc
	workers    int
	now        func() time.Time
	newID      func() string
	log        zerolog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPreprocess installs the image adjustment step used when
// Params.NeedsPreprocessing is true.
func WithPreprocess(fn PreprocessFunc) Option {
	return func(a *Analyzer) { a.preprocess = fn }
}

// WithWorkers bounds AnalyzeBatch concurrency. Values <= 0 select
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// WithIDGenerator overrides result ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(a *Analyzer) { a.newID = fn }
}

// WithLogger sets the analyzer logger.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Analyzer) { a.log = l }
}

// NewAnalyzer creates an analyzer that appends every successful run to h.
func NewAnalyzer(h *History, opts ...Option) *Analyzer {
	a := &Analyzer{
		history: h,
		workers: runtime.NumCPU(),
		now:     time.Now,
		newID:   uuid.NewString,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// History returns the analyzer's result history.
func (a *Analyzer) History() *History {
	return a.history
}

// Pending is the future result of a submitted job.
type Pending struct {
	done   chan struct{}
	result *Result
	err    error
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the job finishes or ctx is done. Cancelling ctx only
// abandons the wait; the job itself still runs to completion.
func (p *Pending) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit starts job on a new goroutine and returns immediately.
//
// If ctx is already cancelled the job is not started and the returned
// Pending resolves to ctx.Err().
func (a *Analyzer) Submit(ctx context.Context, job Job) *Pending {
	p := &Pending{done: make(chan struct{})}
	if err := ctx.Err(); err != nil {
		p.err = err
		close(p.done)
		return p
	}
	go func() {
		defer close(p.done)
		p.result, p.err = a.run(job)
	}()
	return p
}

// Analyze runs job in the background and waits for it.
func (a *Analyzer) Analyze(ctx context.Context, job Job) (*Result, error) {
	return a.Submit(ctx, job).Wait(ctx)
}

// AnalyzeBatch analyzes jobs concurrently and returns results in job
// order. The first failure cancels jobs that have not started yet.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := make([]*Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			r, err := a.Analyze(gctx, job)
			if err != nil {
				return fmt.Errorf("%s: %w", job.Source, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Analyzer) run(job Job) (*Result, error) {
	if err := job.Params.Validate(); err != nil {
		return nil, err
	}

	img := job.Image
	if a.preprocess != nil && job.Params.NeedsPreprocessing() {
		img = a.preprocess(img, job.Params)
	}

	buf, err := BufferFromImage(img)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	colonies := Detect(buf, job.Params)
	r := NewResult(a.newID(), job.Source, a.now(), buf.Width, buf.Height, job.Params, colonies)

	a.log.Debug().
		Str("id", r.ID).
		Str("source", r.Source).
		Int("count", r.Count).
		Float64("coverage", r.Coverage).
		Dur("elapsed", time.Since(start)).
		Msg("colony analysis complete")

	if a.history != nil {
		a.history.Add(r)
	}
	return r, nil
}
