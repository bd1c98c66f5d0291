package tiktok

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
)

// Feed item selectors keyed on TikTok's data-e2e test attributes, which
// survive class-name churn between frontend releases.
const (
	feedItemSelector       = `[data-e2e="recommend-list-item-container"]`
	authorAnchorSelector   = `a[data-e2e="video-author-avatar"]`
	authorUniqueIDSelector = `[data-e2e="video-author-uniqueid"]`
	authorNicknameSelector = `[data-e2e="video-author-nickname"]`
	captionSelector        = `[data-e2e="video-desc"]`
	tagLinkSelector        = `a[href*="/tag/"]`
	musicSelector          = `[data-e2e="video-music"] a`
	mediaSelector          = `video`
	likeCountSelector      = `[data-e2e="like-count"]`
	commentCountSelector   = `[data-e2e="comment-count"]`
	shareCountSelector     = `[data-e2e="share-count"]`
)

// extractTiktok assembles one record from a feed item element, bottom-up:
// each sub-entity is built from raw strings plus a handle over the element
// it came from.
func (c *Crawler) extractTiktok(el *rod.Element) (*Tiktok, error) {
	author, err := extractAuthor(el)
	if err != nil {
		return nil, fmt.Errorf("extract author: %w", err)
	}
	caption, err := extractCaption(el)
	if err != nil {
		return nil, fmt.Errorf("extract caption: %w", err)
	}
	music, err := extractMusic(el)
	if err != nil {
		return nil, fmt.Errorf("extract music: %w", err)
	}
	media, err := extractMedia(el)
	if err != nil {
		return nil, fmt.Errorf("extract media: %w", err)
	}
	metrics, err := extractMetrics(el)
	if err != nil {
		return nil, fmt.Errorf("extract metrics: %w", err)
	}

	rec, err := NewTiktok(uuid.NewString(), author, caption, music, media, metrics, ElementHandle(el))
	if err != nil {
		return nil, err
	}
	return rec.WithStatus("success").WithClient(c.client).WithUserAgent(c.userAgent), nil
}

func extractAuthor(el *rod.Element) (Author, error) {
	anchor, err := el.Element(authorAnchorSelector)
	if err != nil {
		return Author{}, fmt.Errorf("find author anchor: %w", err)
	}
	link, err := attrValue(anchor, "href")
	if err != nil {
		return Author{}, fmt.Errorf("author link: %w", err)
	}

	var avatar string
	if img, err := anchor.Element("img"); err == nil {
		if avatar, err = attrValue(img, "src"); err != nil {
			return Author{}, fmt.Errorf("author avatar: %w", err)
		}
	}

	uidEl, err := el.Element(authorUniqueIDSelector)
	if err != nil {
		return Author{}, fmt.Errorf("find author uniqueid: %w", err)
	}
	uid, err := uidEl.Text()
	if err != nil {
		return Author{}, fmt.Errorf("author uniqueid: %w", err)
	}

	// Nickname is not rendered on every feed layout.
	var nickname string
	if nickEl, err := el.Element(authorNicknameSelector); err == nil {
		if nickname, err = nickEl.Text(); err != nil {
			return Author{}, fmt.Errorf("author nickname: %w", err)
		}
	}

	return NewAuthor(uid, avatar, link, nickname, ElementHandle(anchor))
}

func extractCaption(el *rod.Element) (Caption, error) {
	capEl, err := el.Element(captionSelector)
	if err != nil {
		return Caption{}, fmt.Errorf("find caption: %w", err)
	}
	text, err := capEl.Text()
	if err != nil {
		return Caption{}, fmt.Errorf("caption text: %w", err)
	}

	tagEls, err := capEl.Elements(tagLinkSelector)
	if err != nil {
		return Caption{}, fmt.Errorf("find caption tags: %w", err)
	}
	// Elements come back in document order, which is appearance order.
	tags := make([]Tag, 0, len(tagEls))
	for _, tagEl := range tagEls {
		link, err := attrValue(tagEl, "href")
		if err != nil {
			return Caption{}, fmt.Errorf("tag link: %w", err)
		}
		tagText, err := tagEl.Text()
		if err != nil {
			return Caption{}, fmt.Errorf("tag text: %w", err)
		}
		tag, err := NewTag(link, tagText, ElementHandle(tagEl))
		if err != nil {
			return Caption{}, err
		}
		tags = append(tags, tag)
	}

	return NewCaption(text, tags, ElementHandle(capEl))
}

func extractMusic(el *rod.Element) (Music, error) {
	musicEl, err := el.Element(musicSelector)
	if err != nil {
		return Music{}, fmt.Errorf("find music: %w", err)
	}
	title, err := musicEl.Text()
	if err != nil {
		return Music{}, fmt.Errorf("music title: %w", err)
	}
	link, err := attrValue(musicEl, "href")
	if err != nil {
		return Music{}, fmt.Errorf("music link: %w", err)
	}
	return NewMusic(title, link, ElementHandle(musicEl))
}

func extractMedia(el *rod.Element) (Media, error) {
	videoEl, err := el.Element(mediaSelector)
	if err != nil {
		return Media{}, fmt.Errorf("find video element: %w", err)
	}
	// src is absent while the player has not loaded a source yet; an empty
	// link is valid and makes Save a no-op for this record.
	link, err := attrValue(videoEl, "src")
	if err != nil {
		return Media{}, fmt.Errorf("video src: %w", err)
	}
	return NewMedia(link, ElementHandle(videoEl))
}

func extractMetrics(el *rod.Element) (Metrics, error) {
	likes, err := countText(el, likeCountSelector)
	if err != nil {
		return Metrics{}, fmt.Errorf("like count: %w", err)
	}
	comments, err := countText(el, commentCountSelector)
	if err != nil {
		return Metrics{}, fmt.Errorf("comment count: %w", err)
	}
	shares, err := countText(el, shareCountSelector)
	if err != nil {
		return Metrics{}, fmt.Errorf("share count: %w", err)
	}
	return NewMetrics(likes, comments, shares, ElementHandle(el))
}

func countText(el *rod.Element, selector string) (string, error) {
	countEl, err := el.Element(selector)
	if err != nil {
		return "", err
	}
	return countEl.Text()
}

// attrValue reads an attribute, mapping a missing attribute to "".
func attrValue(el *rod.Element, name string) (string, error) {
	v, err := el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}
