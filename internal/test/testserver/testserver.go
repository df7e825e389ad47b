package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/state303/tabpool/internal/test/testfile"
)

// HttpRequest is a wrapper for *http.Request accumulated by a TestServer.
type HttpRequest struct {
	*http.Request
}

// HandleFunc is a request handler function that has access to accumulated HttpRequest.
type HandleFunc func(requests []*HttpRequest, w http.ResponseWriter, r *http.Request)

// NewServer returns a server with given HandleFunc.
func NewServer(h HandleFunc) *TestServer {
	handler := &HttpHandler{handleFunc: h}
	server := &TestServer{Server: httptest.NewServer(handler)}
	handler.server = server
	return server
}

// WithPayload creates a server answering every request with the same payload.
// If no payload is given, blank html is served.
func WithPayload(t *testing.T, payload []byte) *TestServer {
	p := blankIfEmpty(payload)
	return NewServer(func(_ []*HttpRequest, w http.ResponseWriter, _ *http.Request) {
		if err := writeResponse(w, p); err != nil {
			t.Error(err.Error())
		}
	})
}

// WithRoutes creates a server answering each path with its own payload, and 404 otherwise.
func WithRoutes(t *testing.T, routes map[string][]byte) *TestServer {
	return NewServer(func(_ []*HttpRequest, w http.ResponseWriter, r *http.Request) {
		payload, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if err := writeResponse(w, blankIfEmpty(payload)); err != nil {
			t.Error(err.Error())
		}
	})
}

func writeResponse(w http.ResponseWriter, payload []byte) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if wrote, err := w.Write(payload); err != nil {
		return err
	} else if expected := len(payload); wrote != expected {
		return fmt.Errorf("server wrote unexpected length of request. got: %+v, want: %+v", wrote, expected)
	}
	return nil
}

func blankIfEmpty(in []byte) []byte {
	if len(in) == 0 {
		return testfile.BlankHTML
	}
	return in
}

// TestServer is a wrapper for httptest.Server such that it could support accumulation of incoming requests.
type TestServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []*HttpRequest
}

// Requests returns a copy of the requests this server instance have received.
func (f *TestServer) Requests() []*HttpRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*HttpRequest(nil), f.requests...)
}

// CountPath returns how many received requests targeted path.
func (f *TestServer) CountPath(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.URL.Path == path {
			n++
		}
	}
	return n
}

// HttpHandler is an implementation of http.Handler to be used for testing.
type HttpHandler struct {
	server     *TestServer
	handleFunc HandleFunc
}

// ServeHTTP accumulates incoming request into server.requests, then pass it down to its HandleFunc.
func (h *HttpHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	h.server.mu.Lock()
	h.server.requests = append(h.server.requests, &HttpRequest{request})
	requests := append([]*HttpRequest(nil), h.server.requests...)
	h.server.mu.Unlock()
	h.handleFunc(requests, writer, request)
}
