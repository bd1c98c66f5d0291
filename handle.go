package tiktok

import (
	"fmt"

	"github.com/go-rod/rod"
)

// Handle is the snapshot capability an entity holds over the DOM element it
// was extracted from. Entities never keep the live element itself — only a
// Handle — so staleness is confined to the one rendering call.
type Handle interface {
	// HTML returns the inner markup of the underlying element.
	HTML() (string, error)
}

type elementHandle struct {
	el *rod.Element
}

// ElementHandle wraps a live go-rod element. Rendering fails with
// ErrStaleHandle once the underlying page has navigated away or the
// element was detached.
func ElementHandle(el *rod.Element) Handle {
	return elementHandle{el: el}
}

func (h elementHandle) HTML() (string, error) {
	v, err := h.el.Property("innerHTML")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStaleHandle, err)
	}
	return v.Str(), nil
}

type staticHandle string

// StaticHandle wraps an already-rendered markup snapshot. It never goes
// stale, which makes it the right handle for tests and for callers that
// extract markup eagerly.
func StaticHandle(html string) Handle {
	return staticHandle(html)
}

func (h staticHandle) HTML() (string, error) {
	return string(h), nil
}
