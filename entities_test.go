package tiktok

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// staleHandle simulates an element whose page has navigated away.
type staleHandle struct{}

func (staleHandle) HTML() (string, error) {
	return "", fmt.Errorf("render: %w", ErrStaleHandle)
}

func mustTag(t *testing.T, link, text string) Tag {
	t.Helper()
	tag, err := NewTag(link, text, StaticHandle("<b>tag</b>"))
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	return tag
}

func mustAuthor(t *testing.T, uniqueID, avatar, link, nickname string) Author {
	t.Helper()
	a, err := NewAuthor(uniqueID, avatar, link, nickname, StaticHandle("<a>author</a>"))
	if err != nil {
		t.Fatalf("NewAuthor: %v", err)
	}
	return a
}

func mustMusic(t *testing.T, title, link string) Music {
	t.Helper()
	m, err := NewMusic(title, link, StaticHandle("<a>music</a>"))
	if err != nil {
		t.Fatalf("NewMusic: %v", err)
	}
	return m
}

// ---------------------------------------------------------------------------
// Construction / normalization
// ---------------------------------------------------------------------------

func TestNewTag_TrimsFields(t *testing.T) {
	t.Parallel()
	tag := mustTag(t, " /tag/a ", " #a ")
	if tag.Link != "/tag/a" {
		t.Errorf("expected trimmed link, got %q", tag.Link)
	}
	if tag.Text != "#a" {
		t.Errorf("expected trimmed text, got %q", tag.Text)
	}
}

func TestNewAuthor_TrimsFields(t *testing.T) {
	t.Parallel()
	a := mustAuthor(t, " user1 ", "\thttps://img.tiktok.com/a.jpg\n", " /@user1 ", "  User One ")
	if a.UniqueID != "user1" {
		t.Errorf("expected trimmed uniqueid, got %q", a.UniqueID)
	}
	if a.Avatar != "https://img.tiktok.com/a.jpg" {
		t.Errorf("expected trimmed avatar, got %q", a.Avatar)
	}
	if a.Link != "/@user1" {
		t.Errorf("expected trimmed link, got %q", a.Link)
	}
	if a.Nickname != "User One" {
		t.Errorf("expected trimmed nickname, got %q", a.Nickname)
	}
}

func TestNewMusic_TrimsFields(t *testing.T) {
	t.Parallel()
	m := mustMusic(t, " original sound ", " /music/original-123 ")
	if m.Title != "original sound" {
		t.Errorf("expected trimmed title, got %q", m.Title)
	}
	if m.Link != "/music/original-123" {
		t.Errorf("expected trimmed link, got %q", m.Link)
	}
}

func TestNewMedia_TrimsFields(t *testing.T) {
	t.Parallel()
	m, err := NewMedia("  https://v.tiktok.com/v.mp4  ", StaticHandle("<video></video>"))
	if err != nil {
		t.Fatalf("NewMedia: %v", err)
	}
	if m.Link != "https://v.tiktok.com/v.mp4" {
		t.Errorf("expected trimmed link, got %q", m.Link)
	}
}

func TestNewMedia_EmptyLinkIsValid(t *testing.T) {
	t.Parallel()
	m, err := NewMedia("   ", StaticHandle("<video></video>"))
	if err != nil {
		t.Fatalf("NewMedia: %v", err)
	}
	if m.Link != "" {
		t.Errorf("expected empty link, got %q", m.Link)
	}
}

func TestNewMetrics_TrimsFields(t *testing.T) {
	t.Parallel()
	m, err := NewMetrics(" 1.2M ", " 3456 ", "\t789 ", StaticHandle("<div>bar</div>"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if m.Likes != "1.2M" {
		t.Errorf("expected trimmed likes, got %q", m.Likes)
	}
	if m.Comments != "3456" {
		t.Errorf("expected trimmed comments, got %q", m.Comments)
	}
	if m.Shares != "789" {
		t.Errorf("expected trimmed shares, got %q", m.Shares)
	}
}

func TestNewMetrics_StampsConstructionTime(t *testing.T) {
	t.Parallel()
	before := time.Now().Add(-time.Second)
	m, err := NewMetrics("1", "2", "3", StaticHandle("<div></div>"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	after := time.Now().Add(time.Second)

	asOf, err := time.Parse(time.RFC3339, m.AsOf)
	if err != nil {
		t.Fatalf("as_of %q is not RFC 3339: %v", m.AsOf, err)
	}
	if asOf.Before(before) || asOf.After(after) {
		t.Errorf("as_of %v outside construction window [%v, %v]", asOf, before, after)
	}
}

func TestNewMetricsAt_PerInstanceTimestamps(t *testing.T) {
	t.Parallel()
	h := StaticHandle("<div></div>")
	m1, err := NewMetricsAt("1", "2", "3", time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), h)
	if err != nil {
		t.Fatalf("NewMetricsAt: %v", err)
	}
	m2, err := NewMetricsAt("1", "2", "3", time.Date(2026, 8, 2, 10, 0, 0, 0, time.UTC), h)
	if err != nil {
		t.Fatalf("NewMetricsAt: %v", err)
	}
	if m1.AsOf == m2.AsOf {
		t.Errorf("expected distinct timestamps, both %q", m1.AsOf)
	}
}

func TestNewCaption_TrimsText(t *testing.T) {
	t.Parallel()
	c, err := NewCaption("  check this out #a #b  ", nil, StaticHandle("<div></div>"))
	if err != nil {
		t.Fatalf("NewCaption: %v", err)
	}
	if c.Text != "check this out #a #b" {
		t.Errorf("expected trimmed text, got %q", c.Text)
	}
}

func TestNewCaption_CopiesTagSlice(t *testing.T) {
	t.Parallel()
	tags := []Tag{mustTag(t, "/tag/a", "#a"), mustTag(t, "/tag/b", "#b")}
	c, err := NewCaption("text", tags, StaticHandle("<div></div>"))
	if err != nil {
		t.Fatalf("NewCaption: %v", err)
	}

	tags[0] = mustTag(t, "/tag/z", "#z")
	if c.Tags[0].Text != "#a" {
		t.Errorf("caption tags mutated through caller slice: got %q", c.Tags[0].Text)
	}
}

func TestConstructors_NilHandle(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		construct func() error
	}{
		{"tag", func() error { _, err := NewTag("/tag/a", "#a", nil); return err }},
		{"author", func() error { _, err := NewAuthor("u", "a", "l", "n", nil); return err }},
		{"caption", func() error { _, err := NewCaption("text", nil, nil); return err }},
		{"music", func() error { _, err := NewMusic("t", "l", nil); return err }},
		{"media", func() error { _, err := NewMedia("l", nil); return err }},
		{"metrics", func() error { _, err := NewMetrics("1", "2", "3", nil); return err }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.construct(); !errors.Is(err, ErrStaleHandle) {
				t.Errorf("expected ErrStaleHandle, got %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

func TestTagEqual(t *testing.T) {
	t.Parallel()
	base := mustTag(t, " /tag/a ", " #a ")
	tests := []struct {
		name  string
		other Tag
		want  bool
	}{
		{"same key, pre-trimmed", mustTag(t, "/tag/a", "#a"), true},
		{"different link", mustTag(t, "/tag/b", "#a"), false},
		{"different text", mustTag(t, "/tag/a", "#b"), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTagEqual_IgnoresHandle(t *testing.T) {
	t.Parallel()
	a, err := NewTag("/tag/a", "#a", StaticHandle("<b>first scrape</b>"))
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	b, err := NewTag("/tag/a", "#a", StaticHandle("<b>second scrape</b>"))
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	if !a.Equal(b) {
		t.Error("tags with equal keys but different handles must compare equal")
	}
}

func TestAuthorEqual(t *testing.T) {
	t.Parallel()
	base := mustAuthor(t, "user1", "avatar1", "/@user1", "User One")
	tests := []struct {
		name  string
		other Author
		want  bool
	}{
		{"same key", mustAuthor(t, "user1", "avatar1", "/@user1", "User One"), true},
		{"different avatar and nickname", mustAuthor(t, "user1", "avatar2", "/@user1", "Renamed"), true},
		{"different uniqueid", mustAuthor(t, "user2", "avatar1", "/@user1", "User One"), false},
		{"different link", mustAuthor(t, "user1", "avatar1", "/@other", "User One"), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMusicEqual(t *testing.T) {
	t.Parallel()
	base := mustMusic(t, "original sound", "/music/123")
	tests := []struct {
		name  string
		other Music
		want  bool
	}{
		{"same key", mustMusic(t, "original sound", "/music/123"), true},
		{"different title", mustMusic(t, "other sound", "/music/123"), false},
		{"different link", mustMusic(t, "original sound", "/music/456"), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := base.Equal(tt.other); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

func TestTagToRecord(t *testing.T) {
	t.Parallel()
	tag, err := NewTag(" /tag/a ", " #a ", StaticHandle("<snapshot>"))
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	rec, err := tag.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	want := map[string]any{"link": "/tag/a", "text": "#a", "element": "<snapshot>"}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("ToRecord = %v, want %v", rec, want)
	}
}

func TestAuthorToRecord_Keys(t *testing.T) {
	t.Parallel()
	a := mustAuthor(t, "user1", "avatar1", "/@user1", "User One")
	rec, err := a.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	for _, key := range []string{"uniqueid", "nickname", "link", "avatar", "element"} {
		if _, ok := rec[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if len(rec) != 5 {
		t.Errorf("expected exactly 5 keys, got %d: %v", len(rec), rec)
	}
}

func TestMetricsToRecord_Keys(t *testing.T) {
	t.Parallel()
	m, err := NewMetricsAt("10", "2", "1", time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), StaticHandle("<div>bar</div>"))
	if err != nil {
		t.Fatalf("NewMetricsAt: %v", err)
	}
	rec, err := m.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	want := map[string]any{
		"likes":    "10",
		"comments": "2",
		"shares":   "1",
		"as_of":    "2026-08-29T12:00:00Z",
		"element":  "<div>bar</div>",
	}
	if !reflect.DeepEqual(rec, want) {
		t.Errorf("ToRecord = %v, want %v", rec, want)
	}
}

func TestCaptionToRecord_PreservesTagOrder(t *testing.T) {
	t.Parallel()
	tags := []Tag{
		mustTag(t, "/tag/first", "#first"),
		mustTag(t, "/tag/second", "#second"),
		mustTag(t, "/tag/third", "#third"),
	}
	c, err := NewCaption("ordered", tags, StaticHandle("<div></div>"))
	if err != nil {
		t.Fatalf("NewCaption: %v", err)
	}
	rec, err := c.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}

	got, ok := rec["tags"].([]any)
	if !ok {
		t.Fatalf("tags is %T, want []any", rec["tags"])
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(got))
	}
	for i, wantText := range []string{"#first", "#second", "#third"} {
		tagRec := got[i].(map[string]any)
		if tagRec["text"] != wantText {
			t.Errorf("tags[%d].text = %v, want %q", i, tagRec["text"], wantText)
		}
	}
}

func TestToRecord_Idempotent(t *testing.T) {
	t.Parallel()
	m, err := NewMetricsAt("10", "2", "1", time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), StaticHandle("<div></div>"))
	if err != nil {
		t.Fatalf("NewMetricsAt: %v", err)
	}
	first, err := m.ToRecord()
	if err != nil {
		t.Fatalf("first ToRecord: %v", err)
	}
	second, err := m.ToRecord()
	if err != nil {
		t.Fatalf("second ToRecord: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ToRecord not idempotent: %v vs %v", first, second)
	}
}

func TestToRecord_StaleHandle(t *testing.T) {
	t.Parallel()
	tag, err := NewTag("/tag/a", "#a", staleHandle{})
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	if _, err := tag.ToRecord(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected ErrStaleHandle, got %v", err)
	}
}

func TestCaptionToRecord_StaleTagHandle(t *testing.T) {
	t.Parallel()
	tag, err := NewTag("/tag/a", "#a", staleHandle{})
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	c, err := NewCaption("text", []Tag{tag}, StaticHandle("<div></div>"))
	if err != nil {
		t.Fatalf("NewCaption: %v", err)
	}
	if _, err := c.ToRecord(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("expected ErrStaleHandle from nested tag, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Describe
// ---------------------------------------------------------------------------

func TestDescribe(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		entity Entity
		wants  []string
	}{
		{"tag", mustTag(t, "/tag/a", "#a"), []string{"Tag(", "/tag/a", "#a"}},
		{"author", mustAuthor(t, "user1", "av", "/@user1", "User One"), []string{"Author(", "user1", "User One"}},
		{"music", mustMusic(t, "sound", "/music/1"), []string{"Music(", "sound", "/music/1"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.entity.Describe()
			for _, want := range tt.wants {
				if !strings.Contains(got, want) {
					t.Errorf("Describe() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestDescribe_DoesNotTouchHandle(t *testing.T) {
	t.Parallel()
	tag, err := NewTag("/tag/a", "#a", staleHandle{})
	if err != nil {
		t.Fatalf("NewTag: %v", err)
	}
	// Must not panic or render the handle even when stale.
	if got := tag.Describe(); !strings.Contains(got, "#a") {
		t.Errorf("Describe() = %q, missing tag text", got)
	}
}
