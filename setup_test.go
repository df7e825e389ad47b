package tabpool

import (
	"context"
	"testing"

	"github.com/state303/tabpool/internal/test/testserver"
)

// prepareBrowser brings a new instance of browser cleaned up with the test,
// or fails the test if browser instantiation fails.
func prepareBrowser(t *testing.T) *Browser {
	b, err := NewBrowser()
	if err != nil {
		t.Logf("failed to instantiate new browser: %+v", err.Error())
		t.FailNow()
	}
	t.Cleanup(b.CleanUp)
	return b
}

// preparePage opens a standalone page in a fresh context of b.
func preparePage(t *testing.T, b *Browser) *Page {
	p, err := newPage(context.Background(), b)
	if err != nil {
		t.Logf("failed to open page: %+v", err.Error())
		t.FailNow()
	}
	t.Cleanup(p.CleanUp)
	return p
}

func prepareServer(t *testing.T, payload []byte) *testserver.TestServer {
	s := testserver.WithPayload(t, payload)
	t.Cleanup(s.Close)
	return s
}

func locationOf(t *testing.T, p *Page) string {
	loc, err := p.Location()
	if err != nil {
		t.Fatalf("failed to read location: %+v", err)
	}
	return loc
}
