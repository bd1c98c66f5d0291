package tiktok

import "errors"

var (
	ErrStaleHandle     = errors.New("tiktok: stale element handle")
	ErrBrowserNotReady = errors.New("tiktok: browser not initialized")
	ErrRateLimited     = errors.New("tiktok: rate limited")
	ErrNotFound        = errors.New("tiktok: not found")
	ErrFetchFailed     = errors.New("tiktok: media fetch failed")
)
