package ai

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveDataURI(t *testing.T) {
	payload := []byte("fake-png-bytes")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	img, err := NewImageFetcher(0).Resolve(context.Background(), uri)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if img.MimeType != "image/png" {
		t.Fatalf("unexpected mime: %q", img.MimeType)
	}
	if string(img.Data) != string(payload) {
		t.Fatal("payload mismatch")
	}
}

func TestResolveRejectsMalformedRefs(t *testing.T) {
	fetcher := NewImageFetcher(0)
	for _, ref := range []string{"", "data:image/png;base64", "ftp://example.com/x.png", "data:image/png,plain"} {
		if _, err := fetcher.Resolve(context.Background(), ref); err == nil {
			t.Fatalf("expected error for %q", ref)
		}
	}
}

func TestResolveDownloadsHTTPReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	img, err := NewImageFetcher(0).Resolve(context.Background(), srv.URL+"/photo.jpg")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if img.MimeType != "image/jpeg" {
		t.Fatalf("unexpected mime: %q", img.MimeType)
	}
	if string(img.Data) != "jpeg-bytes" {
		t.Fatal("payload mismatch")
	}
}

func TestResolveEnforcesSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	if _, err := NewImageFetcher(16).Resolve(context.Background(), srv.URL); err == nil {
		t.Fatal("expected size limit error")
	}
}
