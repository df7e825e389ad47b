package tabpool

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog/log"
)

// Browser is a wrapper that embeds rod.Browser instance.
// Pool managers share one Browser and never close it themselves.
type Browser struct {
	*rod.Browser
	launcher *launcher.Launcher
	once     *sync.Once
}

// BrowserOptions holds the launcher knobs that may vary between deployments.
// The sandbox flags are not configurable.
type BrowserOptions struct {
	// Bin is the path of the browser executable. Empty lets rod resolve one.
	Bin string
	// Proxy is passed to the browser as --proxy-server when not empty.
	Proxy string
	// Headful shows the browser window. The zero value runs headless.
	Headful bool
}

// DefaultBrowserOptions returns options for a headless browser with no proxy.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{}
}

// CleanUp closes the browser process and wipes the launcher's data directory.
// It is safe to call more than once.
func (b *Browser) CleanUp() {
	b.once.Do(func() {
		if err := b.Close(); err != nil {
			log.Debug().Err(err).Msg("Browser already closed")
		}
		b.launcher.Cleanup()
		log.Info().Msg("Browser cleaned up")
	})
}

// NewBrowserWithOptions launches a browser with the given options, plus the flags
// disabling the OS-level sandbox required to run inside restricted containers.
// Launch failures are returned as is, there is no retry.
func NewBrowserWithOptions(opts BrowserOptions) (*Browser, error) {
	l := newLauncher(opts)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	log.Info().
		Bool("headless", !opts.Headful).
		Str("proxy", opts.Proxy).
		Msg("Browser launched")

	return &Browser{Browser: b, launcher: l, once: &sync.Once{}}, nil
}

// NewBrowser returns a new headless browser with sandboxing disabled.
func NewBrowser() (*Browser, error) {
	return NewBrowserWithOptions(DefaultBrowserOptions())
}

// newLauncher builds the launcher for opts. Headless runs use the new headless mode.
func newLauncher(opts BrowserOptions) *launcher.Launcher {
	l := launcher.New().
		Set("no-sandbox").
		Set("disable-setuid-sandbox")
	if opts.Headful {
		l = l.Headless(false)
	} else {
		l = l.Set("headless", "new")
	}
	if len(opts.Bin) > 0 {
		l = l.Bin(opts.Bin)
	}
	if len(opts.Proxy) > 0 {
		l = l.Proxy(opts.Proxy)
	}
	return l
}
