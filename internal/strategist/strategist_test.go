package strategist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fyrsmithlabs/strategist/internal/generator"
	"github.com/fyrsmithlabs/strategist/internal/rag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRetriever struct {
	calls    atomic.Int32
	passages []string
	err      error
	delay    time.Duration
	lastK    atomic.Int32
}

func (m *mockRetriever) Retrieve(ctx context.Context, _ string, k int) ([]string, error) {
	m.calls.Add(1)
	m.lastK.Store(int32(k))
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.passages, nil
}

type mockGenerator struct {
	mu           sync.Mutex
	calls        atomic.Int32
	err          error
	delay        time.Duration
	descriptions []string
	passages     [][]string
}

func (m *mockGenerator) Generate(ctx context.Context, description string, passages []string) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.descriptions = append(m.descriptions, description)
	m.passages = append(m.passages, passages)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", &rag.GenerationError{Err: ctx.Err()}
		}
	}
	if m.err != nil {
		return "", m.err
	}
	return "Strategy for " + description, nil
}

func newTestStrategist(t *testing.T, r Retriever, g Generator, opts ...Option) *Strategist {
	t.Helper()
	s, err := New(r, g, opts...)
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	r := &mockRetriever{}
	g := &mockGenerator{}

	tests := []struct {
		name      string
		retriever Retriever
		generator Generator
		opts      []Option
	}{
		{name: "nil retriever", generator: g},
		{name: "nil generator", retriever: r},
		{name: "zero cache size", retriever: r, generator: g, opts: []Option{WithCacheSize(0)}},
		{name: "negative cache size", retriever: r, generator: g, opts: []Option{WithCacheSize(-1)}},
		{name: "zero top k", retriever: r, generator: g, opts: []Option{WithTopK(0)}},
		{name: "negative timeout", retriever: r, generator: g, opts: []Option{WithGenerationTimeout(-time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.retriever, tt.generator, tt.opts...)
			assert.ErrorIs(t, err, rag.ErrInvalidConfiguration)
		})
	}
}

func TestCreateStrategy_CachesIdenticalDescriptions(t *testing.T) {
	r := &mockRetriever{passages: []string{"p1"}}
	g := &mockGenerator{}
	s := newTestStrategist(t, r, g)

	first, err := s.CreateStrategy(context.Background(), "eco-friendly water bottle")
	require.NoError(t, err)
	second, err := s.CreateStrategy(context.Background(), "eco-friendly water bottle")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, int32(1), g.calls.Load())
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Entries: 1, Capacity: DefaultCacheSize}, s.Stats())
}

func TestCreateStrategy_RetrievesTopK(t *testing.T) {
	r := &mockRetriever{passages: []string{"Eco bottles reduce plastic waste."}}
	g := &mockGenerator{}
	s := newTestStrategist(t, r, g)

	_, err := s.CreateStrategy(context.Background(), "eco-friendly water bottle")
	require.NoError(t, err)

	assert.Equal(t, int32(DefaultTopK), r.lastK.Load())
	require.Len(t, g.descriptions, 1)
	assert.Equal(t, "eco-friendly water bottle", g.descriptions[0])
	assert.Equal(t, []string{"Eco bottles reduce plastic waste."}, g.passages[0])

	custom := newTestStrategist(t, r, g, WithTopK(5))
	_, err = custom.CreateStrategy(context.Background(), "another")
	require.NoError(t, err)
	assert.Equal(t, int32(5), r.lastK.Load())
}

func TestCreateStrategy_ClearCacheRegenerates(t *testing.T) {
	g := &mockGenerator{}
	s := newTestStrategist(t, &mockRetriever{}, g)

	_, err := s.CreateStrategy(context.Background(), "a gym")
	require.NoError(t, err)
	assert.Equal(t, 1, s.CacheLen())

	s.ClearCache()
	assert.Zero(t, s.CacheLen())

	_, err = s.CreateStrategy(context.Background(), "a gym")
	require.NoError(t, err)
	assert.Equal(t, int32(2), g.calls.Load())
}

func TestCreateStrategy_EvictsLeastRecentlyUsed(t *testing.T) {
	const size = 4
	g := &mockGenerator{}
	s := newTestStrategist(t, &mockRetriever{}, g, WithCacheSize(size))
	ctx := context.Background()

	for i := 0; i <= size; i++ {
		_, err := s.CreateStrategy(ctx, fmt.Sprintf("description %d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, size, s.CacheLen())
	assert.Equal(t, int32(size+1), g.calls.Load())

	// The most recent entries are still cached.
	_, err := s.CreateStrategy(ctx, fmt.Sprintf("description %d", size))
	require.NoError(t, err)
	assert.Equal(t, int32(size+1), g.calls.Load())

	// The first one was evicted.
	_, err = s.CreateStrategy(ctx, "description 0")
	require.NoError(t, err)
	assert.Equal(t, int32(size+2), g.calls.Load())
}

func TestCreateStrategy_HitRefreshesRecency(t *testing.T) {
	g := &mockGenerator{}
	s := newTestStrategist(t, &mockRetriever{}, g, WithCacheSize(2))
	ctx := context.Background()

	for _, d := range []string{"a", "b", "a", "c"} {
		_, err := s.CreateStrategy(ctx, d)
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), g.calls.Load())

	// "b" was least recently used when "c" arrived.
	_, err := s.CreateStrategy(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int32(3), g.calls.Load())

	_, err = s.CreateStrategy(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int32(4), g.calls.Load())
}

func TestCreateStrategy_KeysAreCaseSensitive(t *testing.T) {
	g := &mockGenerator{}
	s := newTestStrategist(t, &mockRetriever{}, g)

	_, err := s.CreateStrategy(context.Background(), "Eco bottles")
	require.NoError(t, err)
	_, err = s.CreateStrategy(context.Background(), "eco bottles")
	require.NoError(t, err)

	assert.Equal(t, int32(2), g.calls.Load())
	assert.Equal(t, 2, s.CacheLen())
}

func TestCreateStrategy_FailuresAreNotCached(t *testing.T) {
	t.Run("retrieval failure", func(t *testing.T) {
		r := &mockRetriever{err: &rag.RetrievalError{Err: errors.New("index unavailable")}}
		g := &mockGenerator{}
		s := newTestStrategist(t, r, g)

		_, err := s.CreateStrategy(context.Background(), "a gym")
		assert.ErrorIs(t, err, rag.ErrRetrievalFailure)
		assert.Zero(t, g.calls.Load())
		assert.Zero(t, s.CacheLen())

		r.err = nil
		_, err = s.CreateStrategy(context.Background(), "a gym")
		require.NoError(t, err)
		assert.Equal(t, int32(2), r.calls.Load())
	})

	t.Run("plain retriever error is classified", func(t *testing.T) {
		s := newTestStrategist(t, &mockRetriever{err: errors.New("boom")}, &mockGenerator{})

		_, err := s.CreateStrategy(context.Background(), "a gym")
		assert.ErrorIs(t, err, rag.ErrRetrievalFailure)
	})

	t.Run("generation failure", func(t *testing.T) {
		g := &mockGenerator{err: &rag.GenerationError{Err: errors.New("rate limit exceeded")}}
		s := newTestStrategist(t, &mockRetriever{}, g)

		_, err := s.CreateStrategy(context.Background(), "a gym")
		assert.ErrorIs(t, err, rag.ErrGenerationFailure)
		assert.Equal(t, "Failed to generate strategy: rate limit exceeded", generator.FailureText(err))
		assert.Zero(t, s.CacheLen())

		g.err = nil
		strategy, err := s.CreateStrategy(context.Background(), "a gym")
		require.NoError(t, err)
		assert.Equal(t, "Strategy for a gym", strategy)
		assert.Equal(t, int32(2), g.calls.Load())
	})
}

func TestCreateStrategy_Timeouts(t *testing.T) {
	t.Run("retrieval", func(t *testing.T) {
		r := &mockRetriever{delay: time.Second}
		s := newTestStrategist(t, r, &mockGenerator{}, WithRetrievalTimeout(10*time.Millisecond))

		_, err := s.CreateStrategy(context.Background(), "a gym")
		assert.ErrorIs(t, err, rag.ErrRetrievalFailure)
		assert.ErrorIs(t, err, rag.ErrTimeout)
	})

	t.Run("generation", func(t *testing.T) {
		g := &mockGenerator{delay: time.Second}
		s := newTestStrategist(t, &mockRetriever{}, g, WithGenerationTimeout(10*time.Millisecond))

		_, err := s.CreateStrategy(context.Background(), "a gym")
		assert.ErrorIs(t, err, rag.ErrGenerationFailure)
		assert.ErrorIs(t, err, rag.ErrTimeout)
		assert.Zero(t, s.CacheLen())
	})
}

func TestCreateStrategy_ConcurrentCallersShareComputation(t *testing.T) {
	g := &mockGenerator{delay: 50 * time.Millisecond}
	s := newTestStrategist(t, &mockRetriever{}, g)

	const callers = 10
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.CreateStrategy(context.Background(), "a gym")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "Strategy for a gym", results[i])
	}
	assert.Equal(t, int32(1), g.calls.Load())
}

func TestCreateStrategy_CanceledCallerDoesNotFailSharedWaiters(t *testing.T) {
	g := &mockGenerator{delay: 100 * time.Millisecond}
	s := newTestStrategist(t, &mockRetriever{}, g)

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.CreateStrategy(first, "a gym")
		firstErr <- err
	}()

	// Let the first caller start the computation before the second joins.
	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)

	secondDone := make(chan struct{})
	var (
		strategy  string
		secondErr error
	)
	go func() {
		defer close(secondDone)
		strategy, secondErr = s.CreateStrategy(context.Background(), "a gym")
	}()

	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)

	<-secondDone
	require.NoError(t, secondErr)
	assert.Equal(t, "Strategy for a gym", strategy)
	assert.Equal(t, int32(1), g.calls.Load())
	assert.Equal(t, 1, s.CacheLen())
}

func TestCreateStrategy_ClearDuringComputationIsNotUndone(t *testing.T) {
	g := &mockGenerator{delay: 50 * time.Millisecond}
	s := newTestStrategist(t, &mockRetriever{}, g)

	done := make(chan error, 1)
	go func() {
		_, err := s.CreateStrategy(context.Background(), "a gym")
		done <- err
	}()

	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)
	s.ClearCache()

	require.NoError(t, <-done)
	assert.Zero(t, s.CacheLen())

	_, err := s.CreateStrategy(context.Background(), "a gym")
	require.NoError(t, err)
	assert.Equal(t, int32(2), g.calls.Load())
	assert.Equal(t, 1, s.CacheLen())
}

func TestMetrics_FailureStage(t *testing.T) {
	r := &mockRetriever{err: errors.New("index unavailable")}
	s := newTestStrategist(t, r, &mockGenerator{}, WithRegisterer(prometheus.NewRegistry()))

	_, err := s.CreateStrategy(context.Background(), "a gym")
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.failures.WithLabelValues(stageRetrieval)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(s.metrics.failures.WithLabelValues(stageGeneration)), 0)
}

func TestCreateStrategy_DistinctDescriptionsRunInParallel(t *testing.T) {
	g := &mockGenerator{delay: 100 * time.Millisecond}
	s := newTestStrategist(t, &mockRetriever{}, g)

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateStrategy(context.Background(), strings.Repeat("x", i+1))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, int32(5), g.calls.Load())
}

func TestMetrics_Registered(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := &mockGenerator{}
	s := newTestStrategist(t, &mockRetriever{}, g, WithRegisterer(reg))
	ctx := context.Background()

	_, err := s.CreateStrategy(ctx, "a")
	require.NoError(t, err)
	_, err = s.CreateStrategy(ctx, "a")
	require.NoError(t, err)

	g.err = errors.New("boom")
	_, err = s.CreateStrategy(ctx, "b")
	require.Error(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.hits), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(s.metrics.misses), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.entries), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.failures.WithLabelValues(stageGeneration)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(s.metrics.failures.WithLabelValues(stageRetrieval)), 0)

	count, err := testutil.GatherAndCount(reg,
		"strategist_cache_hits_total",
		"strategist_cache_misses_total",
		"strategist_cache_entries",
		"strategist_generation_failures_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	s.ClearCache()
	assert.InDelta(t, 0, testutil.ToFloat64(s.metrics.entries), 0)
}
