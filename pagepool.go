package tabpool

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PagePool is a LIFO free list of idle pages, safe for concurrent use.
// The most recently pushed page is the next one popped.
type PagePool struct {
	mu    sync.Mutex
	pages []*Page
}

// Push puts a page on top of the pool.
func (p *PagePool) Push(page *Page) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = append(p.pages, page)
}

// Pop takes the most recently pushed page, or returns false when the pool is empty.
// It never waits for a page to be pushed.
func (p *PagePool) Pop() (*Page, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.pages)
	if n == 0 {
		return nil, false
	}
	page := p.pages[n-1]
	p.pages[n-1] = nil
	p.pages = p.pages[:n-1]
	return page, true
}

// Len returns the number of idle pages.
func (p *PagePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// PageManager hands out blank pages, each living in its own incognito context.
// When no idle page is left, AcquirePage opens a new one instead of waiting,
// so the number of pages only grows.
type PageManager struct {
	browser  *Browser
	pages    PagePool
	poolSize int
}

// NewPageManager opens poolSize pages concurrently and keeps them as the initial
// idle pages. If any page fails to open, the pages opened so far are closed and
// the error is returned.
func NewPageManager(ctx context.Context, browser *Browser, poolSize int) (*PageManager, error) {
	if poolSize < 0 {
		poolSize = 0
	}
	log.Info().Int("pool_size", poolSize).Msg("Creating new page manager")

	pages, err := openPages(ctx, poolSize, func(ctx context.Context) (*Page, error) {
		return newPage(ctx, browser)
	})
	if err != nil {
		return nil, err
	}

	m := &PageManager{browser: browser, poolSize: poolSize}
	m.pages.pages = pages
	return m, nil
}

// AcquirePage returns the most recently released page, or a new blank page
// when none is idle.
func (m *PageManager) AcquirePage(ctx context.Context) (*Page, error) {
	if page, ok := m.pages.Pop(); ok {
		log.Info().Str("page_id", page.ID).Int("idle", m.pages.Len()).Msg("Acquired page")
		return page, nil
	}
	page, err := newPage(ctx, m.browser)
	if err != nil {
		return nil, err
	}
	log.Info().Str("page_id", page.ID).Msg("Acquired new page")
	return page, nil
}

// ReleasePage navigates the page to a blank document and makes it idle again.
// The caller must not use the page afterwards. On navigation failure the page
// is not returned to the pool.
func (m *PageManager) ReleasePage(ctx context.Context, page *Page) error {
	if page == nil {
		return ErrNilPage
	}
	if err := page.Reset(ctx, BlankURL); err != nil {
		return err
	}
	m.pages.Push(page)
	log.Info().Str("page_id", page.ID).Int("idle", m.pages.Len()).Msg("Released page")
	return nil
}

// Idle returns the number of pages waiting to be acquired.
func (m *PageManager) Idle() int {
	return m.pages.Len()
}

// PoolSize returns the number of pages opened at construction.
func (m *PageManager) PoolSize() int {
	return m.poolSize
}

// openPages runs n page openers concurrently. Each opener writes into its own
// slot, so the result keeps submission order regardless of completion order.
func openPages(ctx context.Context, n int, open func(context.Context) (*Page, error)) ([]*Page, error) {
	pages := make([]*Page, n)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			page, err := open(gctx)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		cleanUpAll(pages)
		return nil, err
	}
	return pages, nil
}

func cleanUpAll(pages []*Page) {
	for _, page := range pages {
		if page != nil {
			page.CleanUp()
		}
	}
}
