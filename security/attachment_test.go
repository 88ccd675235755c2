package security

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"sentinel-bot/models"
)

func pngPrefix() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
}

func exePrefix() []byte {
	return append([]byte("MZ\x90\x00"), bytes.Repeat([]byte{0}, 16)...)
}

func TestVerifyMagic(t *testing.T) {
	assert := assert.New(t)

	v, detail := VerifyMagic(pngPrefix())
	assert.Equal(VerdictImage, v)
	assert.Equal("PNG", detail)

	v, detail = VerifyMagic(exePrefix())
	assert.Equal(VerdictMismatch, v)
	assert.Contains(detail, "executable")

	v, _ = VerifyMagic([]byte("\x7fELF\x02\x01"))
	assert.Equal(VerdictMismatch, v)

	v, _ = VerifyMagic([]byte("\xff\xd8\xff\xe0"))
	assert.Equal(VerdictImage, v)

	// Readable but unrecognized bytes are a mismatch, not an unknown.
	v, _ = VerifyMagic([]byte("PK\x03\x04"))
	assert.Equal(VerdictMismatch, v)

	v, _ = VerifyMagic(nil)
	assert.Equal(VerdictUnknown, v)
}

func TestAttachmentScorerDisguisedExecutable(t *testing.T) {
	assert := assert.New(t)
	cfg := testSecurityConfig()

	as := newAttachmentScorer(cfg, &fakeFetcher{prefixes: map[string][]byte{
		"https://cdn.example/image.jpg": exePrefix(),
	}})

	ev := &models.MessageEvent{
		Content: "check out this screenshot",
		Attachments: []models.AttachmentInfo{
			{URL: "https://cdn.example/image.jpg", Filename: "image.jpg", ContentType: "image/jpeg"},
		},
	}

	score, reasons := as.Score(context.Background(), ev)
	assert.Equal(cfg.Weights.BadMagic, score)
	assert.NotEmpty(reasons)
	// The signal alone crosses the delete threshold regardless of text.
	assert.GreaterOrEqual(score, cfg.Thresholds.Delete)
}

func TestAttachmentScorerValidImage(t *testing.T) {
	as := newAttachmentScorer(testSecurityConfig(), &fakeFetcher{prefixes: map[string][]byte{
		"https://cdn.example/real.png": pngPrefix(),
	}})

	ev := &models.MessageEvent{
		Attachments: []models.AttachmentInfo{
			{URL: "https://cdn.example/real.png", Filename: "real.png", ContentType: "image/png"},
		},
	}

	score, reasons := as.Score(context.Background(), ev)
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestAttachmentScorerUnreadableBytes(t *testing.T) {
	// Fetch failures degrade to zero contribution, never abort evaluation.
	as := newAttachmentScorer(testSecurityConfig(), &fakeFetcher{})

	ev := &models.MessageEvent{
		Attachments: []models.AttachmentInfo{
			{URL: "https://cdn.example/gone.png", Filename: "gone.png", ContentType: "image/png"},
		},
		EmbedImageURLs: []string{"https://cdn.example/embed.png"},
	}

	score, reasons := as.Score(context.Background(), ev)
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

func TestAttachmentScorerSkipsNonImages(t *testing.T) {
	// A declared archive is not the disguise this check hunts for.
	as := newAttachmentScorer(testSecurityConfig(), &fakeFetcher{prefixes: map[string][]byte{
		"https://cdn.example/data.zip": []byte("PK\x03\x04"),
	}})

	ev := &models.MessageEvent{
		Attachments: []models.AttachmentInfo{
			{URL: "https://cdn.example/data.zip", Filename: "data.zip", ContentType: "application/zip"},
		},
	}

	score, _ := as.Score(context.Background(), ev)
	assert.Zero(t, score)
}

func TestAttachmentScorerEmbedImages(t *testing.T) {
	assert := assert.New(t)
	cfg := testSecurityConfig()

	as := newAttachmentScorer(cfg, &fakeFetcher{prefixes: map[string][]byte{
		"https://evil.example/lure.png": exePrefix(),
	}})

	ev := &models.MessageEvent{
		EmbedImageURLs: []string{"https://evil.example/lure.png"},
	}

	score, _ := as.Score(context.Background(), ev)
	assert.Equal(cfg.Weights.BadMagic, score)
}
