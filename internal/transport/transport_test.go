package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAddsStaticHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rt := New(Options{
		Timeout: 5 * time.Second,
		Headers: http.Header{
			"User-Agent": {"shopsync-test"},
			"X-Api-Key":  {"k-123"},
		},
	})
	client := &http.Client{Transport: rt}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("X-Api-Key", "override")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got.Get("User-Agent") != "shopsync-test" {
		t.Errorf("User-Agent = %q, want shopsync-test", got.Get("User-Agent"))
	}
	if got.Get("X-Api-Key") != "override" {
		t.Errorf("X-Api-Key = %q, per-request value should win", got.Get("X-Api-Key"))
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("caller's request must not be modified")
	}
}

func TestNewWithoutHeadersReturnsBase(t *testing.T) {
	rt := New(Options{})
	if _, ok := rt.(*headerTransport); ok {
		t.Error("expected bare transport when no headers configured")
	}
	if _, ok := New(Options{Fingerprint: true}).(*chromeTransport); !ok {
		t.Error("expected chrome transport when fingerprinting is enabled")
	}
}

func TestChromeTransportPlainHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewChromeTransport(5 * time.Second)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("plain http request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
}
