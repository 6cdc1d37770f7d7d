package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func TestCheckViaServer_UsesRunningServer(t *testing.T) {
	var scans int32
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/api/feeding/check-schedule", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		atomic.AddInt32(&scans, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"currentTime":"08:00","notificationsSent":1,"details":[{"recordId":3,"userId":4,"phoneNumber":"+639****4567","time":"08:00","message":"hi"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	result, handled, err := checkViaServer(context.Background(), srv.Client(), srv.URL+"/")
	if !handled || err != nil {
		t.Fatalf("handled = %v, err = %v", handled, err)
	}
	if atomic.LoadInt32(&scans) != 1 {
		t.Fatalf("server scans = %d, want 1", scans)
	}
	if result.CurrentTime != "08:00" || result.NotificationsSent != 1 || result.Details[0].RecordID != 3 {
		t.Fatalf("result = %+v", result)
	}

	var out bytes.Buffer
	if err := printResult(&out, result); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"notificationsSent": 1`) {
		t.Fatalf("output = %s", out.String())
	}
}

func TestCheckViaServer_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/api/feeding/check-schedule", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"Error checking feeding schedule: db down"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, handled, err := checkViaServer(context.Background(), srv.Client(), srv.URL)
	if !handled || err == nil || err.Error() != "Error checking feeding schedule: db down" {
		t.Fatalf("handled = %v, err = %v", handled, err)
	}
}

func TestCheckViaServer_NoServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, handled, err := checkViaServer(context.Background(), http.DefaultClient, url)
	if handled || err != nil {
		t.Fatalf("handled = %v, err = %v, want local fallback", handled, err)
	}
}

func TestCheckViaServer_UnhealthyServerFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, handled, err := checkViaServer(context.Background(), srv.Client(), srv.URL)
	if handled || err != nil {
		t.Fatalf("handled = %v, err = %v", handled, err)
	}
}

func TestLocalURL(t *testing.T) {
	cases := map[string]string{
		":8080":          "http://127.0.0.1:8080",
		"0.0.0.0:9000":   "http://127.0.0.1:9000",
		"10.1.2.3:8080":  "http://10.1.2.3:8080",
		"localhost:8081": "http://localhost:8081",
	}
	for in, want := range cases {
		if got := localURL(in); got != want {
			t.Errorf("localURL(%q) = %q, want %q", in, got, want)
		}
	}
}
