package tabpool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PreloadTarget is where pages of a label are parked.
type PreloadTarget struct {
	URL string `mapstructure:"url"`
}

// PreloadConfig maps a label to its preload target.
// Labels are matched case-insensitively.
type PreloadConfig map[string]PreloadTarget

type labelPool struct {
	url   string
	pages PagePool
}

// PreloadedPageManager keeps a separate pool per label, with every idle page
// already showing the label's URL. Releasing a page sends it back to that URL
// rather than to a blank document.
type PreloadedPageManager struct {
	browser  *Browser
	labels   map[string]*labelPool
	poolSize int
}

// NormalizeLabel returns the key a label is stored under.
func NormalizeLabel(label string) string {
	return strings.ToUpper(label)
}

// NewPreloadedPageManager opens poolSize pages for every label of cfg, each one
// navigated to its label's URL. All pages are opened concurrently as one batch;
// if any fails, the pages opened so far are closed and the error is returned.
// Labels that are equal once upper-cased are rejected with ErrDuplicateLabel
// rather than one silently replacing the other.
func NewPreloadedPageManager(ctx context.Context, browser *Browser, cfg PreloadConfig, poolSize int) (*PreloadedPageManager, error) {
	if poolSize < 0 {
		poolSize = 0
	}
	log.Info().
		Int("pool_size", poolSize).
		Int("labels", len(cfg)).
		Msg("Creating new preloaded page manager")

	labels := make(map[string]*labelPool, len(cfg))
	for label, target := range cfg {
		key := NormalizeLabel(label)
		if _, ok := labels[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLabel, key)
		}
		labels[key] = &labelPool{url: target.URL}
	}

	slots := make(map[string][]*Page, len(labels))
	for key := range labels {
		slots[key] = make([]*Page, poolSize)
	}

	g, gctx := errgroup.WithContext(ctx)
	for key, lp := range labels {
		for i := 0; i < poolSize; i++ {
			key, url, slot := key, lp.url, slots[key]
			i := i
			g.Go(func() error {
				page, err := newPageAt(gctx, browser, url)
				if err != nil {
					return fmt.Errorf("preload %s: %w", key, err)
				}
				slot[i] = page
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		for _, pages := range slots {
			cleanUpAll(pages)
		}
		return nil, err
	}

	for key, lp := range labels {
		lp.pages.pages = slots[key]
	}
	return &PreloadedPageManager{browser: browser, labels: labels, poolSize: poolSize}, nil
}

func (m *PreloadedPageManager) lookup(label string) (string, *labelPool, error) {
	key := NormalizeLabel(label)
	lp, ok := m.labels[key]
	if !ok {
		return key, nil, fmt.Errorf("%w: %s", ErrUnknownLabel, label)
	}
	return key, lp, nil
}

// AcquirePage returns the most recently released page of label, or a new page
// already navigated to the label's URL when none is idle.
func (m *PreloadedPageManager) AcquirePage(ctx context.Context, label string) (*Page, error) {
	key, lp, err := m.lookup(label)
	if err != nil {
		return nil, err
	}
	if page, ok := lp.pages.Pop(); ok {
		log.Info().Str("label", key).Str("page_id", page.ID).Msg("Acquired preloaded page")
		return page, nil
	}
	page, err := newPageAt(ctx, m.browser, lp.url)
	if err != nil {
		return nil, err
	}
	log.Info().Str("label", key).Str("page_id", page.ID).Msg("Acquired new preloaded page")
	return page, nil
}

// ReleasePage navigates the page back to the label's URL and makes it idle again.
// On navigation failure the page is not returned to the pool.
func (m *PreloadedPageManager) ReleasePage(ctx context.Context, page *Page, label string) error {
	if page == nil {
		return ErrNilPage
	}
	key, lp, err := m.lookup(label)
	if err != nil {
		return err
	}
	if err := page.Reset(ctx, lp.url); err != nil {
		return err
	}
	lp.pages.Push(page)
	log.Info().
		Str("label", key).
		Str("page_id", page.ID).
		Int("idle", lp.pages.Len()).
		Msg("Released preloaded page")
	return nil
}

// Labels returns the normalized labels, sorted.
func (m *PreloadedPageManager) Labels() []string {
	labels := make([]string, 0, len(m.labels))
	for key := range m.labels {
		labels = append(labels, key)
	}
	sort.Strings(labels)
	return labels
}

// URL returns the preload URL of label.
func (m *PreloadedPageManager) URL(label string) (string, error) {
	_, lp, err := m.lookup(label)
	if err != nil {
		return "", err
	}
	return lp.url, nil
}

// Idle returns the number of idle pages of label, or 0 for an unknown label.
func (m *PreloadedPageManager) Idle(label string) int {
	_, lp, err := m.lookup(label)
	if err != nil {
		return 0
	}
	return lp.pages.Len()
}

// PoolSize returns the number of pages opened per label at construction.
func (m *PreloadedPageManager) PoolSize() int {
	return m.poolSize
}
