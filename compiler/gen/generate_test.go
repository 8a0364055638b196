package gen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xrmgen/compiler/load"
)

func newTestMapper(t *testing.T, src load.Source, opts ...Option) *Mapper {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m, err := NewMapper(src, append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	return m
}

func TestNewMapperErrors(t *testing.T) {
	_, err := NewMapper(nil)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))

	_, err = NewMapper(load.Records{}, WithFetchAllThreshold(0))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestMapperCreateContext(t *testing.T) {
	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithNamespace("Contoso.Xrm"), WithEntityList("opportunity, account,contact"))

	c, err := m.CreateContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Contoso.Xrm", c.Namespace)
	assert.Equal(t, []string{"account", "contact", "opportunity"}, c.Names())
	require.NoError(t, c.Validate())

	require.Equal(t, 1, src.fetches())
	assert.Equal(t, [][]string{{"opportunity", "account", "contact", ActivityParty}}, src.requested(),
		"the activity party is always requested")
}

func TestMapperMemoizesFetch(t *testing.T) {
	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithEntities("account", "contact"))
	ctx := context.Background()

	first, err := m.CreateContext(ctx)
	require.NoError(t, err)
	second, err := m.CreateContext(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, src.fetches(), "the second run reuses the cached records")
	assert.Equal(t, snapshotOrder(first.Entities), snapshotOrder(second.Entities))
	assert.NotSame(t, first.Entities[0], second.Entities[0], "each run builds its own graph")
}

func TestMapperCoalescesFetches(t *testing.T) {
	src := newCountingSource(testRecords())
	src.release = make(chan struct{})
	m := newTestMapper(t, src, WithEntities("account", "contact"))

	const runs = 8
	var wg sync.WaitGroup
	errs := make(chan error, runs)
	for range runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.CreateContext(context.Background())
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return src.fetches() == 1 }, time.Second, time.Millisecond)
	// Give the other runs time to join the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.fetches())
}

func TestMapperFetchAllThreshold(t *testing.T) {
	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithEntities("account", "contact", "lead"), WithFetchAllThreshold(2))

	c, err := m.CreateContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.allCalls.Load())
	assert.Equal(t, int32(0), src.calls.Load())
	assert.Equal(t, []string{"account", "contact", "lead"}, c.Names(), "fetching all is equivalent to fetching the selection")

	require.NoError(t, m.Reconfigure(WithEntities("email")))
	c, err = m.CreateContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.fetches(), "a fetch of all entities covers any selection")
	assert.Equal(t, []string{ActivityParty, "email"}, c.Names())
}

func TestMapperReconfigure(t *testing.T) {
	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithEntities("account", "contact", "lead"))
	ctx := context.Background()

	_, err := m.CreateContext(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Reconfigure(WithEntities("account", "lead")))
	c, err := m.CreateContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"account", "lead"}, c.Names())
	assert.Equal(t, 1, src.fetches(), "cached records cover the narrower selection")

	require.NoError(t, m.Reconfigure(WithEntities("account", "opportunity")))
	c, err = m.CreateContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"account", "opportunity"}, c.Names())
	assert.Equal(t, 2, src.fetches(), "opportunity was never fetched")

	err = m.Reconfigure(WithFetchAllThreshold(-1))
	require.Error(t, err)
	assert.Equal(t, load.FetchAllThreshold, m.Config().FetchAllThreshold, "a failed reconfiguration keeps the config")
}

func TestMapperRefresh(t *testing.T) {
	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithEntities("account"))
	ctx := context.Background()

	_, err := m.CreateContext(ctx)
	require.NoError(t, err)
	m.Refresh()
	_, err = m.CreateContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.fetches())
}

// changingSource serves a single account whose display name can change
// between fetches. The first fetch blocks until release is closed.
type changingSource struct {
	release chan struct{}
	started chan struct{}

	mu      sync.Mutex
	display string
	calls   int
}

func (s *changingSource) setDisplay(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.display = name
}

func (s *changingSource) fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *changingSource) Entities(ctx context.Context, _ []string, _ bool) ([]*load.Entity, error) {
	s.mu.Lock()
	s.calls++
	call, display := s.calls, s.display
	s.mu.Unlock()
	if call == 1 {
		close(s.started)
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return []*load.Entity{{LogicalName: "account", DisplayName: display}}, nil
}

func (s *changingSource) AllEntities(ctx context.Context, unpublished bool) ([]*load.Entity, error) {
	return s.Entities(ctx, nil, unpublished)
}

func TestMapperRefreshDuringFetch(t *testing.T) {
	src := &changingSource{display: "Old Account", release: make(chan struct{}), started: make(chan struct{})}
	m := newTestMapper(t, src, WithEntities("account"))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := m.CreateContext(ctx)
		done <- err
	}()
	<-src.started

	m.Refresh()
	src.setDisplay("New Account")
	c, err := m.CreateContext(ctx)
	require.NoError(t, err)
	require.Len(t, c.Entities, 1)
	assert.Equal(t, "New Account", c.Entities[0].DisplayName)

	close(src.release)
	require.NoError(t, <-done)

	c, err = m.CreateContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New Account", c.Entities[0].DisplayName, "a fetch started before the refresh does not replace the cache")
	assert.Equal(t, 2, src.fetches())
}

func TestMapperSourceErrorPropagates(t *testing.T) {
	authErr := errors.New("authentication failed")
	src := newCountingSource(testRecords())
	src.err = authErr
	m := newTestMapper(t, src, WithEntities("account"))

	c, err := m.CreateContext(context.Background())
	require.Error(t, err)
	assert.Nil(t, c)
	assert.Same(t, authErr, err, "source errors are returned unchanged")

	src.err = nil
	_, err = m.CreateContext(context.Background())
	require.NoError(t, err, "failed fetches are not cached")
	assert.Equal(t, 2, src.fetches())
}

func TestMapperEmptySelection(t *testing.T) {
	m := newTestMapper(t, newCountingSource(testRecords()))
	c, err := m.CreateContext(context.Background())
	require.NoError(t, err)
	assert.Empty(t, c.Entities)
	assert.Empty(t, c.Enums)
}

func TestMapperActivityParty(t *testing.T) {
	m := newTestMapper(t, newCountingSource(testRecords()), WithEntities("email", "account"))
	c, err := m.CreateContext(context.Background())
	require.NoError(t, err)
	_, err = c.Entity(ActivityParty)
	require.NoError(t, err, "activities pull in the activity party")
}

func TestMapperMappingFile(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "entities.tt")
	mappingPath := load.MappingFile(template)

	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithEntities("account", "contact"), WithMappingFile(mappingPath))
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		c, err := m.CreateContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"account", "contact"}, c.Names())
	})

	t.Run("document replaces the selection", func(t *testing.T) {
		doc := `{"opportunity": {"codeName": "Deal", "attributes": {"name": "Title"}}, "account": null}`
		require.NoError(t, os.WriteFile(mappingPath, []byte(doc), 0o644))
		c, err := m.CreateContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"account", "opportunity"}, c.Names())
		opp, err := c.Entity("opportunity")
		require.NoError(t, err)
		assert.Equal(t, "Deal", opp.Name)
		assert.Equal(t, "Title", opp.Field("name").Name)
	})

	t.Run("malformed file degrades to no overrides", func(t *testing.T) {
		require.NoError(t, os.WriteFile(mappingPath, []byte(`{"account": `), 0o644))
		c, err := m.CreateContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"account", "contact"}, c.Names())
	})

	t.Run("explicit mapping wins", func(t *testing.T) {
		require.NoError(t, m.Reconfigure(WithMapping(load.Mapping{"lead": {}})))
		c, err := m.CreateContext(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"lead"}, c.Names())
	})
}

func TestMapperDeterminism(t *testing.T) {
	run := func() *Context {
		m := newTestMapper(t, load.Records(testRecords()), WithEntities(load.Names(testRecords())...))
		c, err := m.CreateContext(context.Background())
		require.NoError(t, err)
		return c
	}
	a, b := run(), run()
	assert.Equal(t, snapshotOrder(a.Entities), snapshotOrder(b.Entities))
	require.Equal(t, len(a.Enums), len(b.Enums))
	for i := range a.Enums {
		assert.Equal(t, a.Enums[i].GlobalName, b.Enums[i].GlobalName)
	}
}

func TestMapperRecords(t *testing.T) {
	src := newCountingSource(testRecords())
	m := newTestMapper(t, src, WithEntities("lead"))
	records, err := m.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"lead", ActivityParty}, load.Names(records))

	_, err = m.CreateContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.fetches())
}

func TestMapperLogsProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m, err := NewMapper(load.Records(testRecords()), WithLogger(logger), WithEntities("account"))
	require.NoError(t, err)
	_, err = m.CreateContext(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "gathering metadata")
	assert.Contains(t, out, "entities metadata retrieved")
	assert.Contains(t, out, "selected entities metadata")
}
