package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDoJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
		wantClient bool
	}{
		{name: "ok", status: 200, body: `{"count": 3}`},
		{name: "bad request", status: 400, body: `{"error":"bad"}`, wantErr: true, wantStatus: 400, wantClient: true},
		{name: "rate limited", status: 429, body: `slow down`, wantErr: true, wantStatus: 429},
		{name: "server error", status: 502, body: `gateway`, wantErr: true, wantStatus: 502},
		{name: "invalid json", status: 200, body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("Accept = %q", r.Header.Get("Accept"))
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			var dest struct {
				Count int `json:"count"`
			}
			err := DoJSON(context.Background(), srv.Client(), req, &dest)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("DoJSON() error = %v", err)
				}
				if dest.Count != 3 {
					t.Errorf("Count = %d, want 3", dest.Count)
				}
				return
			}
			if err == nil {
				t.Fatal("DoJSON() expected error")
			}
			var se *StatusError
			if tt.wantStatus == 0 {
				if errors.As(err, &se) {
					t.Errorf("decode failure should not be a StatusError: %v", err)
				}
				return
			}
			if !errors.As(err, &se) {
				t.Fatalf("err = %T, want *StatusError", err)
			}
			if se.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.wantStatus)
			}
			if se.ClientSide() != tt.wantClient {
				t.Errorf("ClientSide() = %v, want %v", se.ClientSide(), tt.wantClient)
			}
			if !strings.Contains(se.Error(), tt.body) {
				t.Errorf("Error() = %q, want body included", se.Error())
			}
		})
	}
}

func TestDoJSON_TransportErrorHidesURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/path-secret?app_key=query-secret", nil)
	err := DoJSON(context.Background(), http.DefaultClient, req, &struct{}{})
	if err == nil {
		t.Fatal("DoJSON() expected error from closed server")
	}
	for _, secret := range []string{"path-secret", "query-secret"} {
		if strings.Contains(err.Error(), secret) {
			t.Errorf("error %q leaks %s", err.Error(), secret)
		}
	}
	if !strings.Contains(err.Error(), strings.TrimPrefix(srv.URL, "http://")) {
		t.Errorf("error %q should still name the host", err.Error())
	}
}
