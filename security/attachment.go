package security

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"sentinel-bot/models"
)

// prefixLen is how many leading bytes are fetched per file. Magic signatures
// live in the first handful of bytes; 512 leaves headroom for future checks.
const prefixLen = 512

// Verdict classifies what a byte prefix actually is, regardless of filename.
type Verdict int

const (
	// VerdictImage means the prefix matches an allowed image signature.
	VerdictImage Verdict = iota
	// VerdictMismatch means the content is readable but is not an allowed
	// image (executable headers included). Hard signal.
	VerdictMismatch
	// VerdictUnknown means the bytes could not be read; contributes nothing.
	VerdictUnknown
)

// PrefixFetcher reads the first n bytes of a remote file. Implementations must
// tolerate truncated streams and report errors rather than partial garbage.
type PrefixFetcher interface {
	FetchPrefix(ctx context.Context, url string, n int) ([]byte, error)
}

type httpPrefixFetcher struct {
	client *retryablehttp.Client
}

// NewPrefixFetcher returns a PrefixFetcher backed by a retrying HTTP client.
// CDN fetches are flaky enough that a couple of retries pay for themselves.
func NewPrefixFetcher() PrefixFetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil
	return &httpPrefixFetcher{client: client}
}

func (f *httpPrefixFetcher) FetchPrefix(ctx context.Context, url string, n int) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", n-1))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, int64(n)))
	if err != nil && len(buf) == 0 {
		return nil, err
	}
	return buf, nil
}

// VerifyMagic checks a byte prefix against known file signatures and returns
// the verdict plus a human-readable description of what was found.
func VerifyMagic(prefix []byte) (Verdict, string) {
	if len(prefix) == 0 {
		return VerdictUnknown, "no bytes"
	}
	if len(prefix) < 4 {
		return VerdictMismatch, "file too small to be an image"
	}

	// Executables disguised as images.
	if bytes.HasPrefix(prefix, []byte("MZ")) {
		return VerdictMismatch, "Windows executable (MZ) disguised as image"
	}
	if bytes.HasPrefix(prefix, []byte("\x7fELF")) {
		return VerdictMismatch, "Linux binary (ELF) disguised as image"
	}

	switch {
	case bytes.HasPrefix(prefix, []byte("\xff\xd8")):
		return VerdictImage, "JPEG"
	case bytes.HasPrefix(prefix, []byte("\x89PNG")):
		return VerdictImage, "PNG"
	case bytes.HasPrefix(prefix, []byte("RIFF")):
		return VerdictImage, "WebP"
	case bytes.HasPrefix(prefix, []byte("BM")):
		return VerdictImage, "BMP"
	case bytes.HasPrefix(prefix, []byte("GIF")):
		return VerdictImage, "GIF"
	}

	return VerdictMismatch, fmt.Sprintf("unknown file format (magic %x)", prefix[:4])
}

// attachmentScorer verifies that files claiming to be images actually are.
// This is a malware-disguise check, not content classification.
type attachmentScorer struct {
	fetcher PrefixFetcher
	weights models.Weights
}

func newAttachmentScorer(cfg *models.SecurityConfig, fetcher PrefixFetcher) *attachmentScorer {
	return &attachmentScorer{fetcher: fetcher, weights: cfg.Weights}
}

// Score fetches a prefix of every image-declared attachment and every
// embed-referenced image and verifies its magic bytes. A mismatch contributes
// the full BadMagic weight once, however many bad files there are; unreadable
// files contribute nothing.
func (as *attachmentScorer) Score(ctx context.Context, ev *models.MessageEvent) (int, []string) {
	var reasons []string
	mismatch := false

	check := func(url, name string) {
		prefix, err := as.fetcher.FetchPrefix(ctx, url, prefixLen)
		if err != nil {
			// Degrade to "unknown": other signals decide.
			log.Printf("Could not read attachment %s: %v", name, err)
			return
		}
		if verdict, detail := VerifyMagic(prefix); verdict == VerdictMismatch {
			mismatch = true
			reasons = append(reasons, fmt.Sprintf("%s: %s", name, detail))
		}
	}

	for _, att := range ev.Attachments {
		if !declaresImage(att) {
			continue
		}
		check(att.URL, att.Filename)
	}
	for _, url := range ev.EmbedImageURLs {
		check(url, "embedded image")
	}

	if mismatch {
		return as.weights.BadMagic, reasons
	}
	return 0, nil
}

// declaresImage reports whether the sender presented the file as an image,
// via content type or filename extension.
func declaresImage(att models.AttachmentInfo) bool {
	if strings.HasPrefix(att.ContentType, "image/") {
		return true
	}
	name := strings.ToLower(att.Filename)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
