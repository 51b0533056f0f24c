package queue_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"

	"foodhub/internal/config"
	"foodhub/internal/logging"
	"foodhub/internal/metrics"
	"foodhub/internal/queue"
	"foodhub/internal/stall"
	"foodhub/internal/state"
	"foodhub/internal/testsupport"
)

func TestChaiverseScenario(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	mustIssue(t, engine, stall.ChaiVerse, "CHA-001")
	mustIssue(t, engine, stall.ChaiVerse, "CHA-002")

	current, err := engine.ServeNext(ctx, stall.ChaiVerse)
	if err != nil {
		t.Fatalf("ServeNext: %v", err)
	}
	if current != "CHA-001" {
		t.Fatalf("expected CHA-001 served, got %q", current)
	}
	q := snapshot(t, engine)[stall.ChaiVerse]
	if len(q.Queue) != 1 || q.Queue[0] != "CHA-002" {
		t.Fatalf("expected queue [CHA-002], got %v", q.Queue)
	}

	if err := engine.ClearQueue(ctx, stall.ChaiVerse); err != nil {
		t.Fatalf("ClearQueue: %v", err)
	}
	q = snapshot(t, engine)[stall.ChaiVerse]
	if len(q.Queue) != 0 || !q.Current.IsZero() {
		t.Fatalf("expected cleared queue, got %+v", q)
	}

	mustIssue(t, engine, stall.ChaiVerse, "CHA-003")
}

func TestServeNextIsFIFO(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	var issued []state.Token
	for i := 0; i < 3; i++ {
		tok, ok, err := engine.IssueToken(ctx, stall.JuiceJunction)
		if err != nil || !ok {
			t.Fatalf("IssueToken: ok=%v err=%v", ok, err)
		}
		issued = append(issued, tok)
	}
	for i, want := range issued {
		got, err := engine.ServeNext(ctx, stall.JuiceJunction)
		if err != nil {
			t.Fatalf("ServeNext #%d: %v", i, err)
		}
		if got != want {
			t.Fatalf("ServeNext #%d = %q, want %q", i, got, want)
		}
	}
}

func TestServeNextOnEmptyQueueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	mustIssue(t, engine, stall.SweetSpot, "SWT-001")
	if _, err := engine.ServeNext(ctx, stall.SweetSpot); err != nil {
		t.Fatalf("ServeNext: %v", err)
	}
	for i := 0; i < 2; i++ {
		current, err := engine.ServeNext(ctx, stall.SweetSpot)
		if err != nil {
			t.Fatalf("ServeNext: %v", err)
		}
		if !current.IsZero() {
			t.Fatalf("expected no current token, got %q", current)
		}
		q := snapshot(t, engine)[stall.SweetSpot]
		if len(q.Queue) != 0 || !q.Current.IsZero() || q.Next != 2 {
			t.Fatalf("unexpected state after empty serve: %+v", q)
		}
	}
}

func TestNumberingIsMonotonicAcrossOperations(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	steps := []struct {
		op    string
		stall stall.Stall
	}{
		{"issue", stall.MaggiMitra},
		{"issue", stall.SpiceHub},
		{"serve", stall.MaggiMitra},
		{"issue", stall.MaggiMitra},
		{"clear", stall.MaggiMitra},
		{"clear", stall.SpiceHub},
		{"issue", stall.MaggiMitra},
		{"serve", stall.SpiceHub},
		{"issue", stall.SpiceHub},
		{"issue", stall.MaggiMitra},
	}
	last := map[stall.Stall]int{}
	for i, step := range steps {
		switch step.op {
		case "issue":
			tok, ok, err := engine.IssueToken(ctx, step.stall)
			if err != nil || !ok {
				t.Fatalf("step %d: IssueToken ok=%v err=%v", i, ok, err)
			}
			var n int
			if _, err := fmt.Sscanf(string(tok), step.stall.Code()+"-%d", &n); err != nil {
				t.Fatalf("step %d: parse %q: %v", i, tok, err)
			}
			if n <= last[step.stall] {
				t.Fatalf("step %d: %q does not increase past %d", i, tok, last[step.stall])
			}
			last[step.stall] = n
		case "serve":
			if _, err := engine.ServeNext(ctx, step.stall); err != nil {
				t.Fatalf("step %d: ServeNext: %v", i, err)
			}
		case "clear":
			if err := engine.ClearQueue(ctx, step.stall); err != nil {
				t.Fatalf("step %d: ClearQueue: %v", i, err)
			}
		}
	}
	if last[stall.MaggiMitra] != 4 || last[stall.SpiceHub] != 2 {
		t.Fatalf("unexpected final numbers: %v", last)
	}
}

func TestClearKeepsCounter(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	for i := 1; i <= 5; i++ {
		mustIssue(t, engine, stall.ChaiVerse, state.Token(fmt.Sprintf("CHA-%03d", i)))
	}
	if err := engine.ClearQueue(ctx, stall.ChaiVerse); err != nil {
		t.Fatalf("ClearQueue: %v", err)
	}
	mustIssue(t, engine, stall.ChaiVerse, "CHA-006")
}

func TestUnknownStallLeavesStorageUntouched(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendFile))
	engine, _ := testsupport.MustNewEngine(t, cfg)

	mustIssue(t, engine, stall.SouthStation, "SOU-001")
	before := testsupport.ReadStateFile(t, cfg)

	tok, ok, err := engine.IssueTokenFor(ctx, "doesnotexist")
	if err != nil || ok || !tok.IsZero() {
		t.Fatalf("expected fail-soft none, got tok=%q ok=%v err=%v", tok, ok, err)
	}
	if current, err := engine.ServeNextFor(ctx, "doesnotexist"); err != nil || !current.IsZero() {
		t.Fatalf("ServeNextFor unknown: current=%q err=%v", current, err)
	}
	if err := engine.ClearQueueFor(ctx, "chaiverse-clear"); err != nil {
		t.Fatalf("ClearQueueFor unknown: %v", err)
	}
	if _, ok, err := engine.IssueToken(ctx, stall.Unknown); ok || err != nil {
		t.Fatalf("IssueToken(Unknown): ok=%v err=%v", ok, err)
	}

	after := testsupport.ReadStateFile(t, cfg)
	if !bytes.Equal(before, after) {
		t.Fatalf("unknown stall changed storage:\nbefore %s\nafter  %s", before, after)
	}
}

func TestStringEntryPointsParseKeys(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	tok, ok, err := engine.IssueTokenFor(ctx, "spicehub")
	if err != nil || !ok || tok != "SPI-001" {
		t.Fatalf("IssueTokenFor: tok=%q ok=%v err=%v", tok, ok, err)
	}
	current, err := engine.ServeNextFor(ctx, "spicehub")
	if err != nil || current != "SPI-001" {
		t.Fatalf("ServeNextFor: current=%q err=%v", current, err)
	}
	if err := engine.ClearQueueFor(ctx, "spicehub"); err != nil {
		t.Fatalf("ClearQueueFor: %v", err)
	}
	if q := snapshot(t, engine)[stall.SpiceHub]; !q.Current.IsZero() {
		t.Fatalf("expected current cleared, got %q", q.Current)
	}
}

func TestStallKeysMatchExactly(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendFile))
	engine, _ := testsupport.MustNewEngine(t, cfg)

	mustIssue(t, engine, stall.ChaiVerse, "CHA-001")
	before := testsupport.ReadStateFile(t, cfg)

	for _, key := range []string{"CHAIVERSE", "ChaiVerse", " chaiverse", "chaiverse ", "chaiverse\n", " SpiceHub "} {
		tok, ok, err := engine.IssueTokenFor(ctx, key)
		if err != nil || ok || !tok.IsZero() {
			t.Fatalf("IssueTokenFor(%q): tok=%q ok=%v err=%v", key, tok, ok, err)
		}
		if current, err := engine.ServeNextFor(ctx, key); err != nil || !current.IsZero() {
			t.Fatalf("ServeNextFor(%q): current=%q err=%v", key, current, err)
		}
		if err := engine.ClearQueueFor(ctx, key); err != nil {
			t.Fatalf("ClearQueueFor(%q): %v", key, err)
		}
	}

	after := testsupport.ReadStateFile(t, cfg)
	if !bytes.Equal(before, after) {
		t.Fatalf("near-miss stall keys changed storage:\nbefore %s\nafter  %s", before, after)
	}
}

// countingBackend counts writes to the memory backend.
type countingBackend struct {
	*state.MemoryBackend
	mu   sync.Mutex
	sets int
}

func (b *countingBackend) Set(ctx context.Context, key string, value []byte) error {
	b.mu.Lock()
	b.sets++
	b.mu.Unlock()
	return b.MemoryBackend.Set(ctx, key, value)
}

func (b *countingBackend) writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sets
}

func TestIdleServeAndClearSkipWrites(t *testing.T) {
	ctx := context.Background()
	backend := &countingBackend{MemoryBackend: state.NewMemoryBackend()}
	engine := queue.New(state.NewStore(backend), nil, nil)

	mustIssue(t, engine, stall.JuiceJunction, "JUI-001")
	if _, err := engine.ServeNext(ctx, stall.JuiceJunction); err != nil {
		t.Fatalf("ServeNext: %v", err)
	}
	// Clearing current on an empty queue is a real change.
	if _, err := engine.ServeNext(ctx, stall.JuiceJunction); err != nil {
		t.Fatalf("ServeNext: %v", err)
	}
	written := backend.writes()

	for i := 0; i < 3; i++ {
		q, err := engine.ServeNextState(ctx, stall.JuiceJunction)
		if err != nil {
			t.Fatalf("ServeNextState: %v", err)
		}
		if !q.Current.IsZero() || q.Next != 2 {
			t.Fatalf("unexpected idle serve state: %+v", q)
		}
		q, err = engine.ClearQueueState(ctx, stall.JuiceJunction)
		if err != nil {
			t.Fatalf("ClearQueueState: %v", err)
		}
		if q.Waiting() != 0 || q.Next != 2 {
			t.Fatalf("unexpected idle clear state: %+v", q)
		}
	}
	if got := backend.writes(); got != written {
		t.Fatalf("idle serve/clear wrote storage: %d writes, want %d", got, written)
	}

	mustIssue(t, engine, stall.JuiceJunction, "JUI-002")
	if got := backend.writes(); got != written+1 {
		t.Fatalf("expected issue to write once, got %d writes after %d", got, written)
	}
}

func TestServeNextStateReturnsWrittenRow(t *testing.T) {
	ctx := context.Background()
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))

	mustIssue(t, engine, stall.MaggiMitra, "MAG-001")
	mustIssue(t, engine, stall.MaggiMitra, "MAG-002")

	q, err := engine.ServeNextState(ctx, stall.MaggiMitra)
	if err != nil {
		t.Fatalf("ServeNextState: %v", err)
	}
	if q.Current != "MAG-001" || len(q.Queue) != 1 || q.Queue[0] != "MAG-002" || q.Next != 3 {
		t.Fatalf("unexpected row: %+v", q)
	}
	q, err = engine.ClearQueueState(ctx, stall.MaggiMitra)
	if err != nil {
		t.Fatalf("ClearQueueState: %v", err)
	}
	if !q.Current.IsZero() || q.Waiting() != 0 || q.Next != 3 {
		t.Fatalf("unexpected row after clear: %+v", q)
	}
	if q, err := engine.ServeNextState(ctx, stall.Unknown); err != nil || q.Next != 0 {
		t.Fatalf("unknown stall: q=%+v err=%v", q, err)
	}
}

func TestFormatToken(t *testing.T) {
	cases := []struct {
		code string
		n    int
		want state.Token
	}{
		{"CHA", 1, "CHA-001"},
		{"JUI", 42, "JUI-042"},
		{"SWT", 999, "SWT-999"},
		{"CHA", 1000, "CHA-1000"},
		{"MAG", 12345, "MAG-12345"},
	}
	for _, tc := range cases {
		if got := queue.FormatToken(tc.code, tc.n); got != tc.want {
			t.Fatalf("FormatToken(%q, %d) = %q, want %q", tc.code, tc.n, got, tc.want)
		}
	}
}

func TestIssueTokenPastNineNineNine(t *testing.T) {
	ctx := context.Background()
	store := state.NewStore(state.NewMemoryBackend())
	if _, err := store.Update(ctx, func(doc state.Document) error {
		q := doc[stall.ChaiVerse]
		q.Next = 999
		doc[stall.ChaiVerse] = q
		return nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	engine := queue.New(store, nil, nil)

	mustIssue(t, engine, stall.ChaiVerse, "CHA-999")
	mustIssue(t, engine, stall.ChaiVerse, "CHA-1000")
}

func TestConcurrentIssueNeverRepeats(t *testing.T) {
	ctx := context.Background()
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendSQLite))
	engine, _ := testsupport.MustNewEngine(t, cfg)

	const workers = 12
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[state.Token]bool{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, ok, err := engine.IssueToken(ctx, stall.ChaiVerse)
			if err != nil || !ok {
				t.Errorf("IssueToken: ok=%v err=%v", ok, err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[tok] {
				t.Errorf("token %q issued twice", tok)
			}
			seen[tok] = true
		}()
	}
	wg.Wait()

	q := snapshot(t, engine)[stall.ChaiVerse]
	if q.Next != workers+1 || len(q.Queue) != workers {
		t.Fatalf("unexpected state after concurrent issue: next=%d waiting=%d", q.Next, len(q.Queue))
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	engine, _ := testsupport.MustNewEngine(t, testsupport.NewConfig(t))
	mustIssue(t, engine, stall.MaggiMitra, "MAG-001")

	doc := snapshot(t, engine)
	q := doc[stall.MaggiMitra]
	q.Queue[0] = "MAG-999"

	if got := snapshot(t, engine)[stall.MaggiMitra].Queue[0]; got != "MAG-001" {
		t.Fatalf("snapshot mutation leaked into store: %q", got)
	}
}

func TestCorruptFileRecoversBeforeIssue(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(config.BackendFile))
	testsupport.WriteStateFile(t, cfg, []byte("not json"))
	engine, _ := testsupport.MustNewEngine(t, cfg)

	mustIssue(t, engine, stall.ChaiVerse, "CHA-001")

	var persisted map[string]state.QueueState
	if err := json.Unmarshal(testsupport.ReadStateFile(t, cfg), &persisted); err != nil {
		t.Fatalf("decode persisted state: %v", err)
	}
	if len(persisted) != len(stall.All()) {
		t.Fatalf("expected every stall persisted, got %d", len(persisted))
	}
	if persisted["chaiverse"].Next != 2 {
		t.Fatalf("expected chaiverse next=2, got %d", persisted["chaiverse"].Next)
	}
}

func TestEngineRecordsMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	engine := queue.New(state.NewStore(state.NewMemoryBackend()), logging.NewNop(), recorder)

	mustIssue(t, engine, stall.SpiceHub, "SPI-001")
	if _, _, err := engine.IssueTokenFor(ctx, "nowhere"); err != nil {
		t.Fatalf("IssueTokenFor: %v", err)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	results := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "foodhub_queue_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var stallLabel, result string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "stall":
					stallLabel = lp.GetValue()
				case "result":
					result = lp.GetValue()
				}
			}
			results[stallLabel+"/"+result] = m.GetCounter().GetValue()
		}
	}
	if results["spicehub/success"] != 1 || results["unknown/unknown_stall"] != 1 {
		t.Fatalf("unexpected operation counters: %v", results)
	}
}

func mustIssue(t *testing.T, engine *queue.Engine, s stall.Stall, want state.Token) {
	t.Helper()
	tok, ok, err := engine.IssueToken(context.Background(), s)
	if err != nil {
		t.Fatalf("IssueToken(%s): %v", s, err)
	}
	if !ok {
		t.Fatalf("IssueToken(%s) returned no token", s)
	}
	if tok != want {
		t.Fatalf("IssueToken(%s) = %q, want %q", s, tok, want)
	}
}

func snapshot(t *testing.T, engine *queue.Engine) state.Document {
	t.Helper()
	doc, err := engine.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	return doc
}
