//go:build unittest

package tiktok

import "fmt"

func (c *Crawler) InitBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (c *Crawler) launchBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (c *Crawler) setupResourceBlocking() {}

func (c *Crawler) scrollFeed() error {
	return ErrBrowserNotReady
}

func (c *Crawler) RestoreSession(path string) error {
	if err := c.LoadCookies(path); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return nil
}

func (c *Crawler) closeBrowser() error {
	c.page = nil
	c.browser = nil
	return nil
}
