package tabpool

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/state303/tabpool/internal/test/testfile"
	"github.com/stretchr/testify/assert"
)

func TestNewPage_MustStartBlank(t *testing.T) {
	t.Parallel()
	b := prepareBrowser(t)
	p := preparePage(t, b)
	assert.Equal(t, BlankURL, locationOf(t, p))
	assert.NotEmpty(t, p.ID)
}

func TestNewPage_MustAssignDistinctIDs(t *testing.T) {
	a, b := NewPage(nil, nil), NewPage(nil, nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPage_Reset_MustNavigate(t *testing.T) {
	t.Parallel()
	b := prepareBrowser(t)
	p := preparePage(t, b)
	s := prepareServer(t, testfile.ItemsHTML)

	assert.NoError(t, p.Reset(context.Background(), s.URL+"/items"))
	assert.Equal(t, s.URL+"/items", locationOf(t, p))
	assert.Equal(t, 1, s.CountPath("/items"))

	assert.NoError(t, p.Reset(context.Background(), BlankURL))
	assert.Equal(t, BlankURL, locationOf(t, p))
}

func TestPage_Reset_MustFail_WhenContextCanceled(t *testing.T) {
	t.Parallel()
	b := prepareBrowser(t)
	p := preparePage(t, b)
	s := prepareServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Reset(ctx, s.URL), context.Canceled)
}

func TestPage_CleanUp_MustBeIdempotent(t *testing.T) {
	t.Parallel()
	b := prepareBrowser(t)
	p := preparePage(t, b)

	assert.NotPanics(t, p.CleanUp)
	assert.NotPanics(t, p.CleanUp)
	assert.Error(t, p.Reset(context.Background(), BlankURL))
}

func TestNewPageAt_MustArriveAtURL(t *testing.T) {
	t.Parallel()
	b := prepareBrowser(t)
	s := prepareServer(t, nil)

	p, err := newPageAt(context.Background(), b, s.URL+"/preload")
	assert.NoError(t, err)
	t.Cleanup(p.CleanUp)
	assert.Equal(t, s.URL+"/preload", locationOf(t, p))
}

// runs sequentially: it swaps the global logger.
func TestNewPage_MustLogCreationAtInfo(t *testing.T) {
	b := prepareBrowser(t)

	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	p := preparePage(t, b)
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"page_id":"`+p.ID+`"`)
	assert.Contains(t, buf.String(), "Created new page")
}
