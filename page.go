package tabpool

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BlankURL is the neutral location a plain pool parks released pages on.
const BlankURL = "about:blank"

// Page is a wrapper that embeds rod.Page, together with the incognito
// browser context the page lives in.
type Page struct {
	*rod.Page
	ID      string
	context *rod.Browser
	once    *sync.Once
}

// newPage opens a fresh incognito context on b and a blank page inside it.
func newPage(ctx context.Context, b *Browser) (*Page, error) {
	incognito, err := b.Context(ctx).Incognito()
	if err != nil {
		return nil, wrap(err, "create browser context")
	}
	// pooled pages outlive ctx, so they are stored detached from it
	incognito = incognito.Context(context.Background())
	p, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{URL: BlankURL})
	if err != nil {
		_ = incognito.Close()
		return nil, wrap(err, "open page")
	}
	page := NewPage(p.Context(context.Background()), incognito)
	log.Info().Str("page_id", page.ID).Msg("Created new page")
	return page, nil
}

// newPageAt opens a fresh page and navigates it to url before handing it out.
func newPageAt(ctx context.Context, b *Browser, url string) (*Page, error) {
	page, err := newPage(ctx, b)
	if err != nil {
		return nil, err
	}
	if err := page.Reset(ctx, url); err != nil {
		page.CleanUp()
		return nil, err
	}
	return page, nil
}

// Reset navigates the page to url and waits for the load event, erasing
// whatever the page was showing before.
func (p *Page) Reset(ctx context.Context, url string) error {
	page := p.Page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return wrap(err, "navigate to "+url)
	}
	if err := page.WaitLoad(); err != nil {
		return wrap(err, "wait load of "+url)
	}
	return nil
}

// Location returns the URL the page currently shows.
func (p *Page) Location() (string, error) {
	info, err := p.Info()
	if err != nil {
		return "", wrap(err, "read page info")
	}
	return info.URL, nil
}

// CleanUp closes the page and disposes its browser context.
// Pools never call it; it is meant for callers discarding a broken page.
func (p *Page) CleanUp() {
	p.once.Do(func() {
		_ = p.Close()
		if p.context != nil {
			_ = p.context.Close()
		}
		log.Info().Str("page_id", p.ID).Msg("Page cleaned up")
	})
}

// NewPage wraps p, owned by the given incognito browser context which may be nil.
func NewPage(p *rod.Page, owner *rod.Browser) *Page {
	return &Page{
		Page:    p,
		ID:      uuid.NewString(),
		context: owner,
		once:    &sync.Once{},
	}
}
