package tabpool

import (
	"context"
	"testing"

	"github.com/state303/tabpool/internal/test/testfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPagePool_MustPopInReverseOrder(t *testing.T) {
	pool := &PagePool{}
	pages := make([]*Page, 5)
	for i := 0; i < 5; i++ {
		p := &Page{}
		pages[i] = p
		pool.Push(p)
	}
	assert.Equal(t, 5, pool.Len())
	for i := 4; i >= 0; i-- {
		p, ok := pool.Pop()
		assert.True(t, ok)
		assert.Same(t, pages[i], p)
	}
	assert.Equal(t, 0, pool.Len())
}

func TestPagePool_Pop_MustNotBlock_WhenEmpty(t *testing.T) {
	pool := &PagePool{}
	p, ok := pool.Pop()
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestPagePool_MustHandleConcurrentAccess(t *testing.T) {
	pool := &PagePool{}
	g := new(errgroup.Group)
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			pool.Push(&Page{})
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	assert.Equal(t, 100, pool.Len())

	seen := make(chan *Page, 100)
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			if p, ok := pool.Pop(); ok {
				seen <- p
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
	close(seen)

	unique := make(map[*Page]struct{})
	for p := range seen {
		unique[p] = struct{}{}
	}
	assert.Len(t, unique, 100)
	assert.Equal(t, 0, pool.Len())
}

func preparePageManager(t *testing.T, poolSize int) *PageManager {
	b := prepareBrowser(t)
	m, err := NewPageManager(context.Background(), b, poolSize)
	require.NoError(t, err)
	return m
}

func TestNewPageManager_MustOpenBlankPages(t *testing.T) {
	t.Parallel()
	m := preparePageManager(t, 2)
	assert.Equal(t, 2, m.Idle())
	assert.Equal(t, 2, m.PoolSize())
	for _, p := range m.pages.pages {
		assert.Equal(t, BlankURL, locationOf(t, p))
	}
}

func TestNewPageManager_MustHandleNegativePoolSize(t *testing.T) {
	t.Parallel()
	m := preparePageManager(t, -10)
	assert.Equal(t, 0, m.Idle())
	assert.Equal(t, 0, m.PoolSize())
}

func TestNewPageManager_MustFail_WhenBrowserClosed(t *testing.T) {
	t.Parallel()
	b := prepareBrowser(t)
	b.CleanUp()
	m, err := NewPageManager(context.Background(), b, 2)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestPageManager_AcquirePage_MustReturnConstructedPagesLIFO(t *testing.T) {
	t.Parallel()
	m := preparePageManager(t, 2)
	constructed := append([]*Page(nil), m.pages.pages...)
	ctx := context.Background()

	first, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	second, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	assert.Same(t, constructed[1], first)
	assert.Same(t, constructed[0], second)
	assert.Equal(t, 0, m.Idle())

	third, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	t.Cleanup(third.CleanUp)
	assert.NotSame(t, first, third)
	assert.NotSame(t, second, third)
	assert.Equal(t, BlankURL, locationOf(t, third))
	assert.Equal(t, 0, m.Idle())

	for _, p := range []*Page{first, second, third} {
		assert.NoError(t, m.ReleasePage(ctx, p))
	}
	assert.Equal(t, 3, m.Idle())
	for _, p := range m.pages.pages {
		assert.Equal(t, BlankURL, locationOf(t, p))
	}
}

func TestPageManager_ReleaseThenAcquire_MustReturnSamePage(t *testing.T) {
	t.Parallel()
	m := preparePageManager(t, 1)
	ctx := context.Background()

	p, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	require.NoError(t, m.ReleasePage(ctx, p))

	again, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestPageManager_ReleasePage_MustNavigateToBlank(t *testing.T) {
	t.Parallel()
	m := preparePageManager(t, 1)
	s := prepareServer(t, testfile.ItemsHTML)
	ctx := context.Background()

	p, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Reset(ctx, s.URL))
	assert.Equal(t, s.URL+"/", locationOf(t, p))

	require.NoError(t, m.ReleasePage(ctx, p))
	assert.Equal(t, BlankURL, locationOf(t, p))
	_, found := ExtractElementTextOrNull(p, "#title")
	assert.False(t, found)
}

func TestPageManager_ReleasePage_MustRejectNilPage(t *testing.T) {
	m := &PageManager{}
	assert.ErrorIs(t, m.ReleasePage(context.Background(), nil), ErrNilPage)
	assert.Equal(t, 0, m.Idle())
}

func TestPageManager_ReleasePage_MustNotPool_WhenNavigationFails(t *testing.T) {
	t.Parallel()
	m := preparePageManager(t, 1)
	ctx := context.Background()

	p, err := m.AcquirePage(ctx)
	require.NoError(t, err)
	p.CleanUp()

	assert.Error(t, m.ReleasePage(ctx, p))
	assert.Equal(t, 0, m.Idle())
}
