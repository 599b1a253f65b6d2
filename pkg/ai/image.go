package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMaxImageBytes = 8 << 20

// ImageFetcher resolves an image reference to inline bytes. References may be
// data URIs (self-describing embedded payloads) or https URLs; either way the
// caller gets bytes without a separate upload round-trip.
type ImageFetcher struct {
	httpClient *http.Client
	maxBytes   int64
}

// NewImageFetcher constructs a fetcher with a bounded download size.
func NewImageFetcher(maxBytes int64) *ImageFetcher {
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &ImageFetcher{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxBytes:   maxBytes,
	}
}

// Resolve turns an image reference into an inline Image.
func (f *ImageFetcher) Resolve(ctx context.Context, imageRef string) (Image, error) {
	imageRef = strings.TrimSpace(imageRef)
	switch {
	case imageRef == "":
		return Image{}, fmt.Errorf("image reference required")
	case strings.HasPrefix(imageRef, "data:"):
		return decodeDataURI(imageRef)
	case strings.HasPrefix(imageRef, "http://"), strings.HasPrefix(imageRef, "https://"):
		return f.download(ctx, imageRef)
	default:
		return Image{}, fmt.Errorf("unsupported image reference scheme")
	}
}

func (f *ImageFetcher) download(ctx context.Context, url string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Image{}, fmt.Errorf("fetch image: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	mime := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return Image{MimeType: mime, Data: data}, nil
}

// decodeDataURI parses data:<mime>;base64,<payload>.
func decodeDataURI(uri string) (Image, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return Image{}, fmt.Errorf("data uri must be base64 encoded")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("decode data uri: %w", err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("data uri carries no payload")
	}
	return Image{MimeType: mime, Data: data}, nil
}
