package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Tiktok is one scraped video: an identity plus one instance of each
// sub-entity. Identity is the id alone — the same video sampled twice with
// different metrics is still the same video.
type Tiktok struct {
	ID      string
	Author  Author
	Caption Caption
	Music   Music
	Media   Media
	Metrics Metrics

	// Status tags the outcome of the scrape ("success", …). Empty means
	// no status was recorded; it serializes as null.
	Status string

	handle    Handle
	client    *http.Client
	userAgent string
}

// NewTiktok assembles a video record from its already-normalized
// sub-entities. The id is assigned by the caller and must be unique.
func NewTiktok(id string, author Author, caption Caption, music Music, media Media, metrics Metrics, h Handle) (*Tiktok, error) {
	if err := checkHandle(h); err != nil {
		return nil, fmt.Errorf("new tiktok: %w", err)
	}
	return &Tiktok{
		ID:        strings.TrimSpace(id),
		Author:    author,
		Caption:   caption,
		Music:     music,
		Media:     media,
		Metrics:   metrics,
		handle:    h,
		client:    defaultClient,
		userAgent: defaultUserAgent,
	}, nil
}

// WithStatus sets the scrape status tag.
func (t *Tiktok) WithStatus(status string) *Tiktok {
	t.Status = strings.TrimSpace(status)
	return t
}

// WithClient sets the HTTP client used to download the media content.
func (t *Tiktok) WithClient(c *http.Client) *Tiktok {
	t.client = c
	return t
}

// WithUserAgent sets the User-Agent header sent on the media download.
func (t *Tiktok) WithUserAgent(ua string) *Tiktok {
	t.userAgent = ua
	return t
}

// Equal reports whether both records describe the same logical video,
// which is decided by id alone.
func (t *Tiktok) Equal(other *Tiktok) bool {
	return t.ID == other.ID
}

func (t *Tiktok) Describe() string {
	return fmt.Sprintf("Tiktok(id=%s, status=%s, %s, %s, %s, %s, %s)",
		t.ID, t.Status,
		t.Author.Describe(), t.Caption.Describe(), t.Music.Describe(),
		t.Media.Describe(), t.Metrics.Describe(),
	)
}

// ToRecord serializes the record and every sub-entity to a plain mapping.
// The key set and casing are a wire contract shared with downstream
// consumers of the JSON sidecar files.
func (t *Tiktok) ToRecord() (map[string]any, error) {
	author, err := t.Author.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("tiktok %s: %w", t.ID, err)
	}
	caption, err := t.Caption.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("tiktok %s: %w", t.ID, err)
	}
	music, err := t.Music.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("tiktok %s: %w", t.ID, err)
	}
	media, err := t.Media.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("tiktok %s: %w", t.ID, err)
	}
	metrics, err := t.Metrics.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("tiktok %s: %w", t.ID, err)
	}
	el, err := t.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("tiktok %s: %w", t.ID, err)
	}

	var status any
	if t.Status != "" {
		status = t.Status
	}

	return map[string]any{
		"id":      t.ID,
		"Author":  author,
		"Caption": caption,
		"Music":   music,
		"Media":   media,
		"Metrics": metrics,
		"Element": el,
		"Status":  status,
	}, nil
}

// Save persists the record under dir as two files: <id>.json with the
// serialized record, then <id>.mp4 with the media bytes. When the media
// link is empty the whole call is a no-op — no files are written.
//
// The two steps are not atomic: a failed download leaves the JSON sidecar
// behind. Both writes overwrite, so re-running Save after a failure is
// safe and completes the pair.
func (t *Tiktok) Save(ctx context.Context, dir string) error {
	if t.Media.Link == "" {
		return nil
	}

	record, err := t.ToRecord()
	if err != nil {
		return fmt.Errorf("save %s: %w", t.ID, err)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("save %s: marshal record: %w", t.ID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, t.ID+".json"), data, 0644); err != nil {
		return fmt.Errorf("save %s: write metadata: %w", t.ID, err)
	}

	body, err := fetchBytes(ctx, t.client, t.userAgent, t.Media.Link)
	if err != nil {
		return fmt.Errorf("save %s: fetch media: %w", t.ID, err)
	}
	if err := os.WriteFile(filepath.Join(dir, t.ID+".mp4"), body, 0644); err != nil {
		return fmt.Errorf("save %s: write media: %w", t.ID, err)
	}
	return nil
}
