package assinafy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"locar-esign/internal/config"
	"locar-esign/internal/domain/entity"
)

func newTestClient(t *testing.T, baseURL string) Client {
	t.Helper()
	cfg := &config.Config{
		Assinafy: config.AssinafyConfig{
			BaseURL:   baseURL,
			AccountID: "acct-1",
			APIToken:  "tok-1",
			Timeout:   5 * time.Second,
		},
	}
	return NewClient(cfg, nil, zap.NewNop())
}

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "42.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o664); err != nil {
		t.Fatalf("writing temp pdf: %v", err)
	}
	return path
}

func TestUploadReturnsDocumentID(t *testing.T) {
	var gotPath, gotAuth, gotAccount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccount = r.Header.Get("X-Account-Id")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file part: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"id": "doc-1"}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	id, err := c.Upload(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "doc-1" {
		t.Fatalf("Upload() = %q, want doc-1", id)
	}
	if gotPath != "/v1/accounts/acct-1/documents" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotAccount != "acct-1" {
		t.Fatalf("X-Account-Id = %q", gotAccount)
	}
}

func TestUploadMissingFileFailsBeforeNetwork(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !IsNotFound(err) {
		t.Fatalf("Upload() error = %v, want not-found kind", err)
	}
	if requests != 0 {
		t.Fatalf("server received %d requests, want 0", requests)
	}
}

func TestGetStatusParsesProviderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/documents/doc-1" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"status": "pending_signature"}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	status, err := c.GetStatus(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status != entity.DocumentStatusPendingSignature {
		t.Fatalf("GetStatus() = %q, want pending_signature", status)
	}
}

func TestGetStatusClassifiesProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.GetStatus(context.Background(), "doc-1")
	if !IsProvider(err) {
		t.Fatalf("GetStatus() error = %v, want provider kind", err)
	}
}

func TestGetStatusClassifiesNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := newTestClient(t, srv.URL)
	_, err := c.GetStatus(context.Background(), "doc-1")
	if !IsNetwork(err) {
		t.Fatalf("GetStatus() error = %v, want network kind", err)
	}
}

func TestFindSignerByEmailMatchesCaseInsensitively(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "Maria@Example.com" {
			t.Errorf("search query = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{
			{"id": "s-0", "email": "other@example.com", "full_name": "Other"},
			{"id": "s-1", "email": "maria@example.COM", "full_name": "Maria Silva"},
		}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	signer, err := c.FindSignerByEmail(context.Background(), "Maria@Example.com")
	if err != nil {
		t.Fatalf("FindSignerByEmail() error = %v", err)
	}
	if signer == nil || signer.ID != "s-1" {
		t.Fatalf("FindSignerByEmail() = %+v, want signer s-1", signer)
	}
}

func TestFindSignerByEmailReturnsNilWhenNoExactMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{
			{"id": "s-0", "email": "maria.silva@example.com", "full_name": "Maria"},
		}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	signer, err := c.FindSignerByEmail(context.Background(), "maria@example.com")
	if err != nil {
		t.Fatalf("FindSignerByEmail() error = %v", err)
	}
	if signer != nil {
		t.Fatalf("FindSignerByEmail() = %+v, want nil", signer)
	}
}

func TestRequestSignatureSendsVirtualMethod(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/documents/doc-1/assignments" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"id": "asg-1", "package": map[string]string{"id": "pkg-1"},
		}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	packageID, err := c.RequestSignature(context.Background(), "doc-1", []string{"s-1"})
	if err != nil {
		t.Fatalf("RequestSignature() error = %v", err)
	}
	if packageID != "pkg-1" {
		t.Fatalf("RequestSignature() = %q, want pkg-1", packageID)
	}
	if body["method"] != "virtual" {
		t.Fatalf("method = %v, want virtual", body["method"])
	}
	ids, ok := body["signer_ids"].([]any)
	if !ok || len(ids) != 1 || ids[0] != "s-1" {
		t.Fatalf("signer_ids = %v, want [s-1]", body["signer_ids"])
	}
}

func TestDownloadCertificatedWritesFile(t *testing.T) {
	content := []byte("%PDF-1.4 signed contract")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/documents/doc-1/download/certificated" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		w.Write(content)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "contratos_assinados", "42.pdf")
	c := newTestClient(t, srv.URL)
	if ok := c.DownloadCertificated(context.Background(), "doc-1", dest); !ok {
		t.Fatal("DownloadCertificated() = false, want true")
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("downloaded content = %q, want %q", got, content)
	}

	entries, err := os.ReadDir(filepath.Dir(dest))
	if err != nil {
		t.Fatalf("listing dest dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dest dir has %d entries, want only the pdf", len(entries))
	}
}

func TestDownloadCertificatedNotFoundLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "contratos_assinados", "42.pdf")
	c := newTestClient(t, srv.URL)
	if ok := c.DownloadCertificated(context.Background(), "doc-1", dest); ok {
		t.Fatal("DownloadCertificated() = true, want false")
	}

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("destination file exists after failed download: %v", err)
	}

	// The destination directory may exist, but it must be empty.
	entries, err := os.ReadDir(filepath.Dir(dest))
	if err == nil && len(entries) != 0 {
		t.Fatalf("dest dir has %d leftover entries, want 0", len(entries))
	}
}
