// Package ingest turns book bodies into per-book lemma frequencies and
// persists them. The Engine owns the queue, permits and status registry.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/extract"
	"github.com/japaniel/vocabforge/pkg/lexicon"
)

// ErrNoWords means a book produced no vocabulary lemmas.
var ErrNoWords = errors.New("no-words")

// ErrClosed is reported for requests made after Close.
var ErrClosed = errors.New("ingestion engine closed")

// Lemmatizer turns text into filtered lemmas.
type Lemmatizer interface {
	Lemmas(text string) ([]string, error)
}

// Store is the persistence the engine writes through.
type Store interface {
	ClearBookWordLinks(ctx context.Context, bookID int64) error
	BulkUpsertWords(ctx context.Context, words []db.WordInput) (map[string]int64, error)
	BulkLinkWords(ctx context.Context, bookID int64, links []db.Link) error
	UpdateBookStats(ctx context.Context, bookID int64, wordsTotal, uniqueWords int) error
}

// Options configures an Engine. Zero values select the defaults below.
type Options struct {
	MaxProcessingTime time.Duration // async deadline, default 300s
	SyncTimeout       time.Duration // inline deadline, default 60s
	MaxSyncSize       int           // bodies up to this size run inline
	MaxConcurrent     int           // permits, default 2
	AcquireTimeout    time.Duration // wait for a permit; zero means no wait
	CleanupInterval   time.Duration // janitor period, default 10m
	MaxStatusAge      time.Duration // terminal entry retention, default 1h
	BatchSize         int           // lemmas per persistence batch, at most 5000
	StreamThreshold   int           // bodies above this are analyzed in chunks, default 300 KB
	ChunkBytes        int           // chunk size, default 100 KB
	QueueSize         int           // async queue capacity, default 64
	Workers           int           // chunk analysis goroutines, default 2

	Logger logrus.FieldLogger
	Now    func() time.Time
	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) Pool
}

const maxBatchSize = 5000

func (o *Options) setDefaults() {
	if o.MaxProcessingTime <= 0 {
		o.MaxProcessingTime = 300 * time.Second
	}
	if o.SyncTimeout <= 0 {
		o.SyncTimeout = 60 * time.Second
	}
	if o.MaxConcurrent < 1 {
		o.MaxConcurrent = 2
	}
	if o.CleanupInterval <= 0 {
		o.CleanupInterval = 10 * time.Minute
	}
	if o.MaxStatusAge <= 0 {
		o.MaxStatusAge = time.Hour
	}
	if o.BatchSize <= 0 || o.BatchSize > maxBatchSize {
		o.BatchSize = maxBatchSize
	}
	if o.StreamThreshold <= 0 {
		o.StreamThreshold = 300 * 1024
	}
	if o.ChunkBytes <= 0 {
		o.ChunkBytes = 100 * 1024
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.PoolFactory == nil {
		o.PoolFactory = func(workers, queue int) Pool { return NewWorkerPool(workers, queue) }
	}
}

// Result is the outcome of an Enqueue call.
type Result struct {
	Status  State  `json:"status"`
	BookID  int64  `json:"book_id"`
	Mode    Mode   `json:"mode"`
	Message string `json:"message,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

type job struct {
	id       string
	bookID   int64
	body     []byte
	format   extract.Format
	mode     Mode
	deadline time.Duration
}

// Engine ingests books. Create one with NewEngine and share it; Close
// stops its worker and janitor.
type Engine struct {
	store Store
	lemm  Lemmatizer
	brown lexicon.WordSet
	opts  Options
	log   logrus.FieldLogger

	permits *permits
	reg     *registry

	mu     sync.Mutex
	closed bool
	queue  chan *job
	stop   chan struct{}
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates an engine and starts its worker and janitor.
func NewEngine(store Store, lemm Lemmatizer, brown lexicon.WordSet, opts Options) *Engine {
	opts.setDefaults()
	base, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:   store,
		lemm:    lemm,
		brown:   brown,
		opts:    opts,
		log:     opts.Logger,
		permits: newPermits(opts.MaxConcurrent, opts.AcquireTimeout),
		reg:     newRegistry(opts.Now),
		queue:   make(chan *job, opts.QueueSize),
		stop:    make(chan struct{}),
		base:    base,
		cancel:  cancel,
	}
	e.wg.Add(2)
	go e.worker()
	go e.janitor()
	return e
}

// Enqueue starts ingesting body into bookID. Small bodies are processed
// before Enqueue returns; larger ones are queued for the background worker.
// Failures are reported in the Result, never as a Go error.
func (e *Engine) Enqueue(ctx context.Context, bookID int64, body []byte, format extract.Format) Result {
	mode := ModeAsync
	deadline := e.opts.MaxProcessingTime
	if len(body) <= e.opts.MaxSyncSize {
		mode, deadline = ModeSync, e.opts.SyncTimeout
	}
	j := &job{id: uuid.NewString(), bookID: bookID, body: body, format: format, mode: mode, deadline: deadline}
	log := e.log.WithFields(logrus.Fields{"book_id": bookID, "job_id": j.id, "mode": mode})

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return Result{Status: StateError, BookID: bookID, Mode: mode, Message: ErrClosed.Error()}
	}

	prev, cur, ok := e.reg.claim(bookID, j.id, mode)
	if !ok {
		log.WithField("state", cur.State).Info("book already being ingested")
		msg := fmt.Sprintf("book %d is %s", bookID, cur.State)
		if cur.State.Terminal() {
			msg = fmt.Sprintf("book %d is still being written by job %s", bookID, cur.JobID)
		}
		return Result{Status: StateAlreadyProcessing, BookID: bookID, Mode: cur.Mode, JobID: cur.JobID, Message: msg}
	}

	if err := e.permits.acquire(ctx); err != nil {
		e.reg.unclaim(bookID, j.id, prev)
		log.Warn("no processing permit available")
		return Result{Status: StateBusy, BookID: bookID, Mode: mode, Message: err.Error()}
	}

	if mode == ModeSync {
		st := e.run(j)
		return Result{Status: st.State, BookID: bookID, Mode: mode, Message: st.Message, JobID: j.id}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.permits.release()
		e.reg.unclaim(bookID, j.id, prev)
		return Result{Status: StateError, BookID: bookID, Mode: mode, Message: ErrClosed.Error()}
	}
	select {
	case e.queue <- j:
		log.Info("book queued")
		return Result{Status: StateQueued, BookID: bookID, Mode: mode, JobID: j.id}
	default:
		e.permits.release()
		e.reg.unclaim(bookID, j.id, prev)
		log.Warn("ingestion queue full")
		return Result{Status: StateBusy, BookID: bookID, Mode: mode, Message: "queue full"}
	}
}

// Status returns the latest ingestion status of a book.
func (e *Engine) Status(bookID int64) (Status, bool) {
	return e.reg.get(bookID)
}

// Snapshot returns every registry entry ordered by book id.
func (e *Engine) Snapshot() []Status {
	return e.reg.snapshot()
}

// Wait polls until the book's ingestion reaches a terminal state or ctx is done.
func (e *Engine) Wait(ctx context.Context, bookID int64) (Status, error) {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for {
		st, ok := e.reg.get(bookID)
		if !ok {
			return Status{}, fmt.Errorf("no ingestion for book %d", bookID)
		}
		if st.State.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-t.C:
		}
	}
}

// Close stops accepting work, cancels running jobs and waits for the
// worker and janitor to exit. Jobs still queued are marked as errors.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.stop)
	close(e.queue)
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for j := range e.queue {
		select {
		case <-e.stop:
			e.permits.release()
			e.reg.done(j.bookID, j.id)
			e.reg.update(j.bookID, j.id, func(s *Status) {
				s.State = StateError
				s.Message = ErrClosed.Error()
			})
			continue
		default:
		}
		e.run(j)
	}
}

func (e *Engine) janitor() {
	defer e.wg.Done()
	t := time.NewTicker(e.opts.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-t.C:
			e.sweep()
		}
	}
}

func (e *Engine) sweep() {
	dropped, reset := e.reg.sweep(e.opts.MaxStatusAge, 2*e.opts.MaxProcessingTime)
	if dropped > 0 || reset > 0 {
		e.log.WithFields(logrus.Fields{"dropped": dropped, "reset": reset}).Info("status registry cleaned")
	}
}

// run processes a claimed job that holds a permit. The permit and the
// book are released when processing stops, even if the deadline fired
// first.
func (e *Engine) run(j *job) Status {
	log := e.log.WithFields(logrus.Fields{"book_id": j.bookID, "job_id": j.id})
	ctx, cancel := context.WithTimeout(e.base, j.deadline)
	defer cancel()

	start := e.opts.Now()
	e.reg.update(j.bookID, j.id, func(s *Status) {
		s.State = StateProcessing
		s.StartedAt = start
	})
	log.WithField("state", StateProcessing).Info("ingestion started")

	done := make(chan error, 1)
	go func() {
		defer e.permits.release()
		defer e.reg.done(j.bookID, j.id)
		done <- e.process(ctx, j)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	elapsed := e.opts.Now().Sub(start)

	e.reg.update(j.bookID, j.id, func(s *Status) {
		s.Duration = elapsed
		switch {
		case err == nil:
			s.State = StateSuccess
			s.Progress = 100
			s.Message = fmt.Sprintf("%d words, %d unique", s.WordsTotal, s.UniqueWords)
		case errors.Is(err, context.DeadlineExceeded):
			s.State = StateTimeout
			s.Message = fmt.Sprintf("deadline of %s exceeded", j.deadline)
		case errors.Is(err, context.Canceled):
			s.State = StateError
			s.Message = ErrClosed.Error()
		default:
			s.State = StateError
			s.Message = err.Error()
		}
	})
	st, _ := e.reg.get(j.bookID)
	entry := log.WithFields(logrus.Fields{"state": st.State, "duration": elapsed})
	if err != nil {
		entry.WithError(err).Warn("ingestion failed")
	} else {
		entry.Info("ingestion finished")
	}
	return st
}

func (e *Engine) progress(j *job, pct int) {
	e.reg.update(j.bookID, j.id, func(s *Status) { s.Progress = pct })
}

// process extracts, analyzes and persists one book. Store calls run on a
// context that is never canceled so a call in flight at the deadline
// completes; steps after it are skipped.
func (e *Engine) process(ctx context.Context, j *job) error {
	lemmas, err := e.analyze(ctx, j)
	if errors.Is(err, extract.ErrNoText) {
		return ErrNoWords
	}
	if err != nil {
		return err
	}
	if len(lemmas) == 0 {
		return ErrNoWords
	}
	freqs := Aggregate(lemmas, e.brown)
	e.progress(j, 50)
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.persist(ctx, j, freqs, len(lemmas))
}

// analyze lemmatizes the body. Small bodies are extracted and analyzed in one
// piece. Larger ones are split into chunks that the worker pool analyzes in
// parallel; plain text is then read paragraph by paragraph instead of being
// extracted into a Document first.
func (e *Engine) analyze(ctx context.Context, j *job) ([]string, error) {
	if j.format == extract.FormatTXT && len(j.body) > e.opts.StreamThreshold {
		var scanErr error
		paras := func(yield func(string) bool) {
			for p, err := range extract.TextParagraphs(j.body) {
				if err != nil {
					scanErr = err
					return
				}
				if !yield(p) {
					return
				}
			}
		}
		e.progress(j, 10)
		lemmas, err := e.analyzeChunks(ctx, paras)
		if err == nil && scanErr != nil {
			err = &extract.FormatError{Format: j.format, Err: scanErr}
		}
		return lemmas, err
	}

	doc, err := extract.Extract(j.body, j.format)
	if err != nil {
		return nil, err
	}
	e.progress(j, 10)
	if len(j.body) <= e.opts.StreamThreshold {
		return e.lemm.Lemmas(doc.Text())
	}
	return e.analyzeChunks(ctx, doc.Paragraphs())
}

func (e *Engine) analyzeChunks(ctx context.Context, paras iter.Seq[string]) ([]string, error) {
	var (
		mu      sync.Mutex
		results = map[int][]string{}
		n       int
	)
	pool := e.opts.PoolFactory(e.opts.Workers, e.opts.Workers*2)
	pool.Start(ctx)
	for chunk := range extract.Chunks(paras, e.opts.ChunkBytes) {
		idx := n
		n++
		err := pool.SubmitCtx(ctx, func(ctx context.Context) error {
			lemmas, err := e.lemm.Lemmas(chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", idx, err)
			}
			mu.Lock()
			results[idx] = lemmas
			mu.Unlock()
			return nil
		})
		if err != nil {
			_ = pool.Close()
			return nil, err
		}
		runtime.GC()
	}
	if err := pool.Close(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []string
	for i := range n {
		out = append(out, results[i]...)
	}
	return out, nil
}

func (e *Engine) persist(ctx context.Context, j *job, freqs []WordFrequency, wordsTotal int) error {
	sctx := context.WithoutCancel(ctx)
	if err := e.store.ClearBookWordLinks(sctx, j.bookID); err != nil {
		return fmt.Errorf("clear links: %w", err)
	}

	written := 0
	bw := NewBatchWriter(e.opts.BatchSize, func(batch []WordFrequency) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		ids, err := e.store.BulkUpsertWords(sctx, wordInputs(batch))
		if err != nil {
			return fmt.Errorf("upsert words: %w", err)
		}
		links := make([]db.Link, 0, len(batch))
		for _, wf := range batch {
			links = append(links, db.Link{WordID: ids[wf.Lemma], Frequency: wf.Frequency})
		}
		if err := e.store.BulkLinkWords(sctx, j.bookID, links); err != nil {
			return fmt.Errorf("link words: %w", err)
		}
		written += len(batch)
		e.progress(j, 50+45*written/len(freqs))
		return nil
	})
	for _, wf := range freqs {
		if bw.Submit(wf) != nil {
			break
		}
	}
	if err := bw.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.store.UpdateBookStats(sctx, j.bookID, wordsTotal, len(freqs)); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	e.reg.update(j.bookID, j.id, func(s *Status) {
		s.WordsTotal = wordsTotal
		s.UniqueWords = len(freqs)
	})
	return nil
}
