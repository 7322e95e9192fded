package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_GetRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"starting"}`))
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(3, time.Millisecond))
	var resp struct{ Status string }
	if err := c.Get(context.Background(), "/health", &resp); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %s", resp.Status)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestClient_GetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"run not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetry(5, time.Millisecond))
	err := c.Get(context.Background(), "/api/runs/x", nil)
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Fatalf("expected server error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestClient_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %s", ct)
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Post(context.Background(), "/api/extract", map[string]any{"pages": []any{}}, nil)
	if err == nil || !strings.Contains(err.Error(), "server error (500): boom") {
		t.Errorf("expected 500 error, got %v", err)
	}
}

func TestClient_DownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		f.Close()
		if fh.Filename != "unit.txt" {
			t.Errorf("expected unit.txt, got %s", fh.Filename)
		}
		if got := r.FormValue("project"); got != "Refinery" {
			t.Errorf("expected project field, got %q", got)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="Refinery_AllProcesses_TagSheet_2026-10-17.xlsx"`)
		w.Write([]byte("PK"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "unit.txt")
	if err := os.WriteFile(path, []byte("P-101"), 0o644); err != nil {
		t.Fatal(err)
	}

	dl, err := NewClient(srv.URL).DownloadFile(context.Background(), "/api/tagsheet", path, map[string]string{"project": "Refinery", "author": ""})
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	if dl.FileName != "Refinery_AllProcesses_TagSheet_2026-10-17.xlsx" {
		t.Errorf("unexpected file name %q", dl.FileName)
	}
	if string(dl.Data) != "PK" {
		t.Errorf("unexpected body %q", dl.Data)
	}
}

func TestOutputToFile(t *testing.T) {
	dir := t.TempDir()
	data := map[string]int{"total_tags": 5}

	tests := []struct {
		name string
		want string
	}{
		{"out.json", "\"total_tags\": 5"},
		{"out.yaml", "total_tags: 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := OutputToFile(data, path); err != nil {
				t.Fatalf("OutputToFile() error = %v", err)
			}
			got, _ := os.ReadFile(path)
			if !strings.Contains(string(got), tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	if f, err := ParseOutputFormat("JSON"); err != nil || f != OutputFormatJSON {
		t.Errorf("ParseOutputFormat(JSON) = %v, %v", f, err)
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestOutputTo_YAMLUsesJSONNames(t *testing.T) {
	type summary struct {
		TotalTags      int    `json:"total_tags"`
		EquipmentCount int    `json:"equipment_count"`
		Note           string `json:"note,omitempty"`
	}
	var buf strings.Builder
	if err := OutputTo(&buf, OutputFormatYAML, summary{TotalTags: 5, EquipmentCount: 2}); err != nil {
		t.Fatalf("OutputTo() error = %v", err)
	}
	want := "total_tags: 5\nequipment_count: 2\n"
	if buf.String() != want {
		t.Errorf("OutputTo() = %q, want %q", buf.String(), want)
	}
}
