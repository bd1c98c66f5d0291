package tiktok

import (
	"fmt"
	"strings"
	"time"
)

// Tag is a hashtag inside a video caption. Two tags are the same tag when
// their text and link match, no matter which page they were scraped from.
type Tag struct {
	Link string
	Text string

	handle Handle
}

// NewTag builds a Tag from raw extracted strings, trimming surrounding
// whitespace. The handle must be non-nil.
func NewTag(link, text string, h Handle) (Tag, error) {
	if err := checkHandle(h); err != nil {
		return Tag{}, fmt.Errorf("new tag: %w", err)
	}
	return Tag{
		Link:   strings.TrimSpace(link),
		Text:   strings.TrimSpace(text),
		handle: h,
	}, nil
}

// Equal reports whether both tags share the same natural key (text, link).
func (t Tag) Equal(other Tag) bool {
	return t.Text == other.Text && t.Link == other.Link
}

func (t Tag) Describe() string {
	return fmt.Sprintf("Tag(link=%s, text=%s)", t.Link, t.Text)
}

func (t Tag) ToRecord() (map[string]any, error) {
	el, err := t.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("tag record: %w", err)
	}
	return map[string]any{
		"link":    t.Link,
		"text":    t.Text,
		"element": el,
	}, nil
}

// Author is the user who posted the video. The natural key is
// (uniqueid, link); nickname and avatar are display data and do not
// participate in equality.
type Author struct {
	UniqueID string
	Avatar   string
	Link     string
	Nickname string

	handle Handle
}

// NewAuthor builds an Author from raw extracted strings, trimming
// surrounding whitespace. The handle must be non-nil.
func NewAuthor(uniqueID, avatar, link, nickname string, h Handle) (Author, error) {
	if err := checkHandle(h); err != nil {
		return Author{}, fmt.Errorf("new author: %w", err)
	}
	return Author{
		UniqueID: strings.TrimSpace(uniqueID),
		Avatar:   strings.TrimSpace(avatar),
		Link:     strings.TrimSpace(link),
		Nickname: strings.TrimSpace(nickname),
		handle:   h,
	}, nil
}

// Equal reports whether both authors share the same natural key
// (uniqueid, link).
func (a Author) Equal(other Author) bool {
	return a.UniqueID == other.UniqueID && a.Link == other.Link
}

func (a Author) Describe() string {
	return fmt.Sprintf("Author(uniqueid=%s, nickname=%s)", a.UniqueID, a.Nickname)
}

func (a Author) ToRecord() (map[string]any, error) {
	el, err := a.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("author record: %w", err)
	}
	return map[string]any{
		"uniqueid": a.UniqueID,
		"nickname": a.Nickname,
		"link":     a.Link,
		"avatar":   a.Avatar,
		"element":  el,
	}, nil
}

// Caption is the video description text together with the hashtags that
// appear in it, in appearance order. The Caption owns its tag sequence.
type Caption struct {
	Text string
	Tags []Tag

	handle Handle
}

// NewCaption builds a Caption from raw text and an ordered tag sequence.
// The tags are copied, so the caller's slice stays the caller's.
func NewCaption(text string, tags []Tag, h Handle) (Caption, error) {
	if err := checkHandle(h); err != nil {
		return Caption{}, fmt.Errorf("new caption: %w", err)
	}
	owned := make([]Tag, len(tags))
	copy(owned, tags)
	return Caption{
		Text:   strings.TrimSpace(text),
		Tags:   owned,
		handle: h,
	}, nil
}

func (c Caption) Describe() string {
	return fmt.Sprintf("Caption(text=%s, tags=%d)", c.Text, len(c.Tags))
}

func (c Caption) ToRecord() (map[string]any, error) {
	el, err := c.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("caption record: %w", err)
	}
	tags := make([]any, 0, len(c.Tags))
	for _, tag := range c.Tags {
		rec, err := tag.ToRecord()
		if err != nil {
			return nil, fmt.Errorf("caption record: %w", err)
		}
		tags = append(tags, rec)
	}
	return map[string]any{
		"tags":    tags,
		"text":    c.Text,
		"element": el,
	}, nil
}

// Music is the sound used by the video. The natural key is (title, link).
type Music struct {
	Title string
	Link  string

	handle Handle
}

// NewMusic builds a Music from raw extracted strings, trimming surrounding
// whitespace. The handle must be non-nil.
func NewMusic(title, link string, h Handle) (Music, error) {
	if err := checkHandle(h); err != nil {
		return Music{}, fmt.Errorf("new music: %w", err)
	}
	return Music{
		Title:  strings.TrimSpace(title),
		Link:   strings.TrimSpace(link),
		handle: h,
	}, nil
}

// Equal reports whether both sounds share the same natural key
// (title, link).
func (m Music) Equal(other Music) bool {
	return m.Title == other.Title && m.Link == other.Link
}

func (m Music) Describe() string {
	return fmt.Sprintf("Music(title=%s, link=%s)", m.Title, m.Link)
}

func (m Music) ToRecord() (map[string]any, error) {
	el, err := m.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("music record: %w", err)
	}
	return map[string]any{
		"title":   m.Title,
		"link":    m.Link,
		"element": el,
	}, nil
}

// Media is the downloadable video content. It has no business key; two
// Media values compare equal only when every field matches.
type Media struct {
	Link string

	handle Handle
}

// NewMedia builds a Media from the raw source URL, trimming surrounding
// whitespace. An empty link is valid and marks the video as not
// downloadable. The handle must be non-nil.
func NewMedia(link string, h Handle) (Media, error) {
	if err := checkHandle(h); err != nil {
		return Media{}, fmt.Errorf("new media: %w", err)
	}
	return Media{
		Link:   strings.TrimSpace(link),
		handle: h,
	}, nil
}

func (m Media) Describe() string {
	return fmt.Sprintf("Media(link=%s)", m.Link)
}

func (m Media) ToRecord() (map[string]any, error) {
	el, err := m.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("media record: %w", err)
	}
	return map[string]any{
		"link":    m.Link,
		"element": el,
	}, nil
}

// Metrics is a point-in-time engagement sample. Counts stay as the raw
// strings shown on the page ("1.2M", not 1200000). AsOf is fixed when the
// sample is constructed and never recomputed.
type Metrics struct {
	Likes    string
	Comments string
	Shares   string
	AsOf     string

	handle Handle
}

// NewMetrics builds a Metrics sample stamped with the current time.
func NewMetrics(likes, comments, shares string, h Handle) (Metrics, error) {
	return NewMetricsAt(likes, comments, shares, time.Now(), h)
}

// NewMetricsAt builds a Metrics sample stamped with an explicit capture
// time, for callers that extract the counts and the timestamp separately.
func NewMetricsAt(likes, comments, shares string, asOf time.Time, h Handle) (Metrics, error) {
	if err := checkHandle(h); err != nil {
		return Metrics{}, fmt.Errorf("new metrics: %w", err)
	}
	return Metrics{
		Likes:    strings.TrimSpace(likes),
		Comments: strings.TrimSpace(comments),
		Shares:   strings.TrimSpace(shares),
		AsOf:     asOf.Format(time.RFC3339),
		handle:   h,
	}, nil
}

func (m Metrics) Describe() string {
	return fmt.Sprintf("Metrics(likes=%s, comments=%s, shares=%s, as_of=%s)",
		m.Likes, m.Comments, m.Shares, m.AsOf)
}

func (m Metrics) ToRecord() (map[string]any, error) {
	el, err := m.handle.HTML()
	if err != nil {
		return nil, fmt.Errorf("metrics record: %w", err)
	}
	return map[string]any{
		"likes":    m.Likes,
		"comments": m.Comments,
		"shares":   m.Shares,
		"as_of":    m.AsOf,
		"element":  el,
	}, nil
}
