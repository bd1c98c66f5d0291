//go:build !unittest

package tiktok

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// InitBrowser launches a headless Chrome instance with stealth mode and
// opens the For You feed. Crawl requires an initialized browser.
func (c *Crawler) InitBrowser() error {
	return c.launchBrowser()
}

func (c *Crawler) launchBrowser() error {
	l := launcher.New().Headless(true)
	if c.proxy != "" {
		l = l.Proxy(c.proxy)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("create stealth page: %w", err)
	}

	c.browser = browser
	c.page = page

	c.setupResourceBlocking()

	if err := c.page.Navigate(c.baseURL + "/foryou"); err != nil {
		return fmt.Errorf("navigate to feed: %w", err)
	}
	if err := c.page.WaitStable(2 * time.Second); err != nil {
		return fmt.Errorf("wait for feed stable: %w", err)
	}
	return nil
}

// setupResourceBlocking stops the feed page from buffering video and heavy
// assets. Media bytes are fetched over the HTTP client instead, so the
// browser only needs the DOM.
func (c *Crawler) setupResourceBlocking() {
	router := c.browser.HijackRequests()
	for _, pattern := range blockedResourcePatterns {
		router.MustAdd(pattern, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
}

// scrollFeed advances the For You feed so fresh items render.
func (c *Crawler) scrollFeed() error {
	if c.page == nil {
		return ErrBrowserNotReady
	}
	if err := c.page.Mouse.Scroll(0, 1600, 4); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	if err := c.page.WaitStable(2 * time.Second); err != nil {
		return fmt.Errorf("wait after scroll: %w", err)
	}
	return nil
}

// RestoreSession loads saved cookies onto both the HTTP client and the
// browser page, so the feed renders with the saved account's session.
func (c *Crawler) RestoreSession(path string) error {
	if err := c.LoadCookies(path); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if c.browser == nil {
		if err := c.launchBrowser(); err != nil {
			return fmt.Errorf("init browser for session: %w", err)
		}
	}

	for _, ck := range c.GetCookies() {
		if err := c.page.SetCookies([]*proto.NetworkCookieParam{{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: ".tiktok.com",
			Path:   "/",
		}}); err != nil {
			return fmt.Errorf("set browser cookie %q: %w", ck.Name, err)
		}
	}

	// Reload so the feed picks up the session.
	if err := c.page.Navigate(c.baseURL + "/foryou"); err != nil {
		return fmt.Errorf("reload feed: %w", err)
	}
	if err := c.page.WaitStable(2 * time.Second); err != nil {
		return fmt.Errorf("wait for feed after session restore: %w", err)
	}
	return nil
}

func (c *Crawler) closeBrowser() error {
	if c.page != nil {
		if err := c.page.Close(); err != nil {
			return fmt.Errorf("close page: %w", err)
		}
		c.page = nil
	}
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
		c.browser = nil
	}
	return nil
}
