package semaphore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(Config{
		APIURL:     srv.URL,
		APIKey:     "key-123",
		SenderName: "SmartFish",
		Timeout:    2 * time.Second,
	})
}

func TestSend_OK(t *testing.T) {
	var got map[string]string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %s", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		got = map[string]string{
			"apikey":     r.PostForm.Get("apikey"),
			"number":     r.PostForm.Get("number"),
			"message":    r.PostForm.Get("message"),
			"sendername": r.PostForm.Get("sendername"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"message_id":1,"recipient":"639171234567","status":"Pending"}]`))
	})

	if err := gw.Send(context.Background(), "09171234567", "feed the fish"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	want := map[string]string{
		"apikey":     "key-123",
		"number":     "09171234567",
		"message":    "feed the fish",
		"sendername": "SmartFish",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("form %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"validation object", http.StatusOK, `{"number":["The number format is invalid."]}`},
		{"empty array", http.StatusOK, `[]`},
		{"failed status", http.StatusOK, `[{"message_id":9,"status":"Failed"}]`},
		{"empty body", http.StatusOK, ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			err := gw.Send(context.Background(), "09171234567", "hi")
			if !errors.Is(err, ErrRejected) {
				t.Fatalf("err = %v, want ErrRejected", err)
			}
		})
	}
}

func TestSend_NotConfigured(t *testing.T) {
	gw := NewGateway(Config{})
	if err := gw.Send(context.Background(), "09171234567", "hi"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestSend_Timeout(t *testing.T) {
	release := make(chan struct{})
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := gw.Send(ctx, "09171234567", "hi"); err == nil {
		t.Fatal("expected timeout error")
	}
}
