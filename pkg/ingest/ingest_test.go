package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode"

	"github.com/japaniel/vocabforge/pkg/analyzer"
	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/db/dbtest"
	"github.com/japaniel/vocabforge/pkg/extract"
	"github.com/japaniel/vocabforge/pkg/lexicon"
)

const catsText = "Cats cat running run ran, the cats!"

// wordTagger splits on non-letters and tags from a fixed table.
type wordTagger map[string]string

func (m wordTagger) Tag(text string) ([]analyzer.TaggedWord, error) {
	var out []analyzer.TaggedWord
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		tag, ok := m[strings.ToLower(w)]
		if !ok {
			tag = "NN"
		}
		out = append(out, analyzer.TaggedWord{Text: w, Tag: tag})
	}
	return out, nil
}

func newAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	lx := &lexicon.Lexicon{
		Vocab: lexicon.NewSet("cat", "run", "dog"),
		Brown: lexicon.DefaultBrown(),
		Stop:  lexicon.Set{},
	}
	a, err := analyzer.NewAnalyzer(lx, analyzer.WithTagger(wordTagger{
		"cats": "NNS", "running": "VBG", "run": "VB", "ran": "VBD", "the": "DT",
	}))
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return a
}

// gatedLemmatizer blocks on texts containing "slow" until the gate closes.
type gatedLemmatizer struct {
	inner   Lemmatizer
	gate    chan struct{}
	entered chan struct{}
	calls   atomic.Int32
}

func newGated(inner Lemmatizer) *gatedLemmatizer {
	return &gatedLemmatizer{inner: inner, gate: make(chan struct{}), entered: make(chan struct{}, 16)}
}

func (g *gatedLemmatizer) Lemmas(text string) ([]string, error) {
	g.calls.Add(1)
	if strings.Contains(text, "slow") {
		g.entered <- struct{}{}
		<-g.gate
	}
	return g.inner.Lemmas(text)
}

// fakeStore records calls per book and can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	next    int64
	ids     map[string]int64
	links   map[int64]map[int64]int
	stats   map[int64][2]int
	upserts int
	linkErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{ids: map[string]int64{}, links: map[int64]map[int64]int{}, stats: map[int64][2]int{}}
}

func (f *fakeStore) ClearBookWordLinks(_ context.Context, bookID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.links, bookID)
	return nil
}

func (f *fakeStore) BulkUpsertWords(_ context.Context, words []db.WordInput) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	out := map[string]int64{}
	for _, w := range words {
		id, ok := f.ids[w.Lemma]
		if !ok {
			f.next++
			id = f.next
			f.ids[w.Lemma] = id
		}
		out[w.Lemma] = id
	}
	return out, nil
}

func (f *fakeStore) BulkLinkWords(_ context.Context, bookID int64, links []db.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.linkErr != nil {
		return f.linkErr
	}
	if f.links[bookID] == nil {
		f.links[bookID] = map[int64]int{}
	}
	for _, l := range links {
		f.links[bookID][l.WordID] += l.Frequency
	}
	return nil
}

func (f *fakeStore) UpdateBookStats(_ context.Context, bookID int64, total, unique int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[bookID] = [2]int{total, unique}
	return nil
}

func (f *fakeStore) statsFor(bookID int64) ([2]int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stats[bookID]
	return st, ok
}

func (f *fakeStore) linkSum(bookID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := 0
	for _, n := range f.links[bookID] {
		sum += n
	}
	return sum
}

// slowLinkStore holds the first BulkLinkWords call until release is closed.
type slowLinkStore struct {
	*fakeStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *slowLinkStore) BulkLinkWords(ctx context.Context, bookID int64, links []db.Link) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return s.fakeStore.BulkLinkWords(ctx, bookID, links)
}

func waitFor(t *testing.T, e *Engine, bookID int64) Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := e.Wait(ctx, bookID)
	if err != nil {
		t.Fatalf("wait for book %d: %v (last status %+v)", bookID, err, st)
	}
	return st
}

func TestEngineIngestsBook(t *testing.T) {
	store := dbtest.New(t)
	ctx := context.Background()
	bookID, err := store.UpsertBook(ctx, db.BookInput{Title: "Cats"}, false)
	if err != nil {
		t.Fatal(err)
	}

	e := NewEngine(store, newAnalyzer(t), lexicon.NewSet("cat"), Options{MaxSyncSize: 1 << 20})
	defer e.Close()

	res := e.Enqueue(ctx, bookID, []byte(catsText), extract.FormatTXT)
	if res.Status != StateSuccess || res.Mode != ModeSync || res.JobID == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	words, err := store.GetWordsByBook(ctx, bookID, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]int{}
	sum := 0
	for _, w := range words {
		got[w.Lemma] = w.Frequency
		sum += w.Frequency
	}
	if len(got) != 2 || got["cat"] != 3 || got["run"] != 3 {
		t.Fatalf("unexpected frequencies %v", got)
	}

	b, _ := store.GetBook(ctx, bookID)
	if b.WordsTotal != sum || b.UniqueWords != len(words) {
		t.Fatalf("book stats %d/%d do not match links %d/%d", b.WordsTotal, b.UniqueWords, sum, len(words))
	}

	cat, _ := store.GetWordByLemma(ctx, "cat")
	if !cat.InBrownCorpus || cat.AudioHintURL != "https://forvo.com/word/cat/#en" {
		t.Fatalf("word metadata not stored: %+v", cat)
	}

	st, ok := e.Status(bookID)
	if !ok || st.State != StateSuccess || st.Progress != 100 || st.WordsTotal != 6 || st.UniqueWords != 2 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestEngineIngestsWithDefaultLexicon(t *testing.T) {
	lx, err := lexicon.Load(lexicon.Options{})
	if err != nil {
		t.Fatal(err)
	}
	an, err := analyzer.NewAnalyzer(lx)
	if err != nil {
		t.Fatal(err)
	}
	store := dbtest.New(t)
	ctx := context.Background()
	bookID, _ := store.UpsertBook(ctx, db.BookInput{Title: "Cats"}, false)

	e := NewEngine(store, an, lx.Brown, Options{MaxSyncSize: 1 << 20})
	defer e.Close()

	if res := e.Enqueue(ctx, bookID, []byte(catsText), extract.FormatTXT); res.Status != StateSuccess {
		t.Fatalf("unexpected result %+v", res)
	}
	words, _ := store.GetWordsByBook(ctx, bookID, 0)
	got := map[string]int{}
	for _, w := range words {
		got[w.Lemma] = w.Frequency
	}
	if len(got) != 2 || got["cat"] != 3 || got["run"] != 3 {
		t.Fatalf("unexpected frequencies %v", got)
	}
	if _, err := store.GetWordByLemma(ctx, "ran"); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("inflected form stored as a word: %v", err)
	}
}

func TestEngineReingestIsIdempotent(t *testing.T) {
	store := dbtest.New(t)
	ctx := context.Background()
	bookID, _ := store.UpsertBook(ctx, db.BookInput{Title: "Cats"}, false)

	e := NewEngine(store, newAnalyzer(t), nil, Options{MaxSyncSize: 1 << 20})
	defer e.Close()

	for i := 0; i < 2; i++ {
		if res := e.Enqueue(ctx, bookID, []byte(catsText), extract.FormatTXT); res.Status != StateSuccess {
			t.Fatalf("run %d: %+v", i, res)
		}
	}

	b, _ := store.GetBook(ctx, bookID)
	if b.WordsTotal != 6 || b.UniqueWords != 2 {
		t.Fatalf("stats after reingest = %d/%d", b.WordsTotal, b.UniqueWords)
	}
	words, _ := store.GetWordsByBook(ctx, bookID, 0)
	for _, w := range words {
		if w.Frequency != 3 {
			t.Fatalf("%s frequency = %d after reingest", w.Lemma, w.Frequency)
		}
	}
}

func TestEngineAsync(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, newAnalyzer(t), nil, Options{MaxSyncSize: 0})
	defer e.Close()

	res := e.Enqueue(context.Background(), 1, []byte(catsText), extract.FormatTXT)
	if res.Status != StateQueued || res.Mode != ModeAsync {
		t.Fatalf("unexpected result %+v", res)
	}
	st := waitFor(t, e, 1)
	if st.State != StateSuccess || st.Mode != ModeAsync || st.JobID != res.JobID {
		t.Fatalf("unexpected status %+v", st)
	}
	if got, _ := store.statsFor(1); got != [2]int{6, 2} {
		t.Fatalf("stats = %v", got)
	}
}

func TestEngineBusyAndAlreadyProcessing(t *testing.T) {
	lem := newGated(newAnalyzer(t))
	e := NewEngine(newFakeStore(), lem, nil, Options{MaxConcurrent: 1, MaxSyncSize: 0})
	defer e.Close()
	defer close(lem.gate)

	first := e.Enqueue(context.Background(), 1, []byte("a slow story about a cat"), extract.FormatTXT)
	if first.Status != StateQueued {
		t.Fatalf("first = %+v", first)
	}
	<-lem.entered

	dup := e.Enqueue(context.Background(), 1, []byte("a slow story about a cat"), extract.FormatTXT)
	if dup.Status != StateAlreadyProcessing || dup.JobID != first.JobID {
		t.Fatalf("duplicate = %+v", dup)
	}

	busy := e.Enqueue(context.Background(), 2, []byte("another story about a dog"), extract.FormatTXT)
	if busy.Status != StateBusy {
		t.Fatalf("expected busy, got %+v", busy)
	}
	if _, ok := e.Status(2); ok {
		t.Fatal("busy request left a registry entry")
	}
}

func TestEngineTimeout(t *testing.T) {
	store := newFakeStore()
	lem := newGated(newAnalyzer(t))
	e := NewEngine(store, lem, nil, Options{
		MaxConcurrent:     1,
		MaxSyncSize:       0,
		MaxProcessingTime: 50 * time.Millisecond,
		AcquireTimeout:    2 * time.Second,
	})
	defer e.Close()

	e.Enqueue(context.Background(), 1, []byte("a slow story about cats"), extract.FormatTXT)
	st := waitFor(t, e, 1)
	if st.State != StateTimeout {
		t.Fatalf("expected timeout, got %+v", st)
	}

	// The abandoned job frees its permit once it stops, and skips the
	// remaining steps.
	close(lem.gate)
	res := e.Enqueue(context.Background(), 2, []byte("a quick story about cats"), extract.FormatTXT)
	if res.Status != StateQueued {
		t.Fatalf("second book = %+v", res)
	}
	if st := waitFor(t, e, 2); st.State != StateSuccess {
		t.Fatalf("second book status %+v", st)
	}
	if _, ok := store.statsFor(1); ok {
		t.Fatal("timed out book should not get stats")
	}
	if st, _ := e.Status(1); st.State != StateTimeout {
		t.Fatalf("timeout overwritten: %+v", st)
	}
}

func TestEngineReingestWaitsForTimedOutJob(t *testing.T) {
	store := &slowLinkStore{fakeStore: newFakeStore(), entered: make(chan struct{}), release: make(chan struct{})}
	e := NewEngine(store, newAnalyzer(t), nil, Options{
		MaxSyncSize:       0,
		MaxProcessingTime: 100 * time.Millisecond,
	})
	defer e.Close()
	ctx := context.Background()

	first := e.Enqueue(ctx, 1, []byte(catsText), extract.FormatTXT)
	if first.Status != StateQueued {
		t.Fatalf("first = %+v", first)
	}
	<-store.entered
	if st := waitFor(t, e, 1); st.State != StateTimeout {
		t.Fatalf("expected timeout, got %+v", st)
	}

	// The first job still has a link write in flight.
	again := e.Enqueue(ctx, 1, []byte(catsText), extract.FormatTXT)
	if again.Status != StateAlreadyProcessing || again.JobID != first.JobID {
		t.Fatalf("re-enqueue during in-flight write = %+v", again)
	}

	close(store.release)
	deadline := time.Now().Add(5 * time.Second)
	for {
		again = e.Enqueue(ctx, 1, []byte(catsText), extract.FormatTXT)
		if again.Status != StateAlreadyProcessing || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if again.Status != StateQueued {
		t.Fatalf("re-enqueue after the job stopped = %+v", again)
	}
	if st := waitFor(t, e, 1); st.State != StateSuccess {
		t.Fatalf("second run %+v", st)
	}
	if sum := store.linkSum(1); sum != 6 {
		t.Fatalf("link frequencies sum to %d, want 6", sum)
	}
	if got, _ := store.statsFor(1); got != [2]int{6, 2} {
		t.Fatalf("stats = %v", got)
	}
}

func TestEngineNoWords(t *testing.T) {
	e := NewEngine(newFakeStore(), newAnalyzer(t), nil, Options{MaxSyncSize: 1 << 20})
	defer e.Close()

	for i, body := range []string{"", "zebras and giraffes only here"} {
		res := e.Enqueue(context.Background(), int64(i+1), []byte(body), extract.FormatTXT)
		if res.Status != StateError || res.Message != ErrNoWords.Error() {
			t.Fatalf("%q: %+v", body, res)
		}
	}
}

func TestEnginePersistenceFailure(t *testing.T) {
	store := newFakeStore()
	store.linkErr = &db.Error{Op: "bulk link words", Err: errors.New("disk full")}
	e := NewEngine(store, newAnalyzer(t), nil, Options{MaxSyncSize: 1 << 20, BatchSize: 1})
	defer e.Close()

	res := e.Enqueue(context.Background(), 1, []byte(catsText), extract.FormatTXT)
	if res.Status != StateError || !strings.Contains(res.Message, "disk full") {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.upserts != 1 {
		t.Fatalf("batches after the failure should be skipped, got %d upserts", store.upserts)
	}
}

func TestEngineBatches(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, newAnalyzer(t), nil, Options{MaxSyncSize: 1 << 20, BatchSize: 1})
	defer e.Close()

	if res := e.Enqueue(context.Background(), 1, []byte(catsText+" A dog."), extract.FormatTXT); res.Status != StateSuccess {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.upserts != 3 {
		t.Fatalf("expected one upsert per lemma, got %d", store.upserts)
	}
	if got, _ := store.statsFor(1); got != [2]int{7, 3} {
		t.Fatalf("stats = %v", got)
	}
}

func TestEngineStreamsLargeBodies(t *testing.T) {
	store := newFakeStore()
	lem := newGated(newAnalyzer(t))
	e := NewEngine(store, lem, nil, Options{
		MaxSyncSize:     1 << 20,
		StreamThreshold: 256,
		ChunkBytes:      128,
		Workers:         3,
	})
	defer e.Close()

	body := strings.Repeat("The cats ran home.\n\n", 100)
	if res := e.Enqueue(context.Background(), 1, []byte(body), extract.FormatTXT); res.Status != StateSuccess {
		t.Fatalf("unexpected result %+v", res)
	}
	if lem.calls.Load() < 2 {
		t.Fatalf("expected chunked analysis, got %d calls", lem.calls.Load())
	}
	if got, _ := store.statsFor(1); got != [2]int{200, 2} {
		t.Fatalf("stats = %v", got)
	}
}

func TestEngineChunksLargeStructuredBodies(t *testing.T) {
	store := newFakeStore()
	lem := newGated(newAnalyzer(t))
	e := NewEngine(store, lem, nil, Options{
		MaxSyncSize:     1 << 20,
		StreamThreshold: 256,
		ChunkBytes:      128,
	})
	defer e.Close()

	body := `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0"><body><section>` +
		strings.Repeat("<p>The cats ran home.</p>", 50) +
		`</section></body></FictionBook>`
	if res := e.Enqueue(context.Background(), 1, []byte(body), extract.FormatFB2); res.Status != StateSuccess {
		t.Fatalf("unexpected result %+v", res)
	}
	if lem.calls.Load() < 2 {
		t.Fatalf("expected chunked analysis, got %d calls", lem.calls.Load())
	}
	if got, _ := store.statsFor(1); got != [2]int{100, 2} {
		t.Fatalf("stats = %v", got)
	}
}

func TestEngineLargeBlankTextHasNoWords(t *testing.T) {
	e := NewEngine(newFakeStore(), newAnalyzer(t), nil, Options{MaxSyncSize: 1 << 20, StreamThreshold: 16})
	defer e.Close()

	res := e.Enqueue(context.Background(), 1, []byte(strings.Repeat(" \n\r\n", 100)), extract.FormatTXT)
	if res.Status != StateError || res.Message != ErrNoWords.Error() {
		t.Fatalf("unexpected result %+v", res)
	}
}

// failingPool always returns an error on Submit to simulate producer error.
type failingPool struct{}

func (failingPool) Start(ctx context.Context) {}
func (failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (failingPool) Close() error { return nil }

func TestEngineSubmitErrorFailsJob(t *testing.T) {
	e := NewEngine(newFakeStore(), newAnalyzer(t), nil, Options{
		MaxSyncSize:     1 << 20,
		StreamThreshold: 16,
		ChunkBytes:      16,
		PoolFactory:     func(workers, queue int) Pool { return failingPool{} },
	})
	defer e.Close()

	res := e.Enqueue(context.Background(), 1, []byte(catsText), extract.FormatTXT)
	if res.Status != StateError || res.Message != "submit failed" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestEngineClosed(t *testing.T) {
	e := NewEngine(newFakeStore(), newAnalyzer(t), nil, Options{})
	e.Close()
	e.Close()
	if res := e.Enqueue(context.Background(), 1, []byte(catsText), extract.FormatTXT); res.Status != StateError {
		t.Fatalf("unexpected result %+v", res)
	}
}
