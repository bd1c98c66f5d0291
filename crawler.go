package tiktok

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"golang.org/x/net/proxy"
)

var tiktokURL, _ = url.Parse("https://www.tiktok.com")

// blockedResourcePatterns keeps the feed page from buffering video and
// heavy assets. Blocking the mp4 request leaves the src attribute on the
// video element intact; media bytes are fetched over the HTTP client.
var blockedResourcePatterns = []string{"*.css", "*.png", "*.jpg", "*.jpeg", "*.mp4", "*.woff*", "*.svg", "*analytics*"}

// Crawler drives a stealth headless browser over the TikTok For You feed
// and assembles one Tiktok record per feed item. The HTTP client is used
// for media downloads only; everything else happens inside the browser.
type Crawler struct {
	client    *http.Client
	proxy     string
	userAgent string
	isLogged  bool
	baseURL   string // defaults to "https://www.tiktok.com"

	browser *rod.Browser
	page    *rod.Page

	// Minimum delay between feed scroll rounds.
	scrollDelay time.Duration
	lastScroll  time.Time
	scrollMu    sync.Mutex
}

// New creates a Crawler with sensible defaults. The browser is not
// launched until InitBrowser is called.
func New() *Crawler {
	jar, _ := cookiejar.New(nil)
	return &Crawler{
		client: &http.Client{
			Jar:       jar,
			Timeout:   30 * time.Second,
			Transport: defaultTransport(),
		},
		baseURL:     "https://www.tiktok.com",
		userAgent:   defaultUserAgent,
		scrollDelay: 2 * time.Second,
	}
}

// WithScrollDelay sets the minimum delay between feed scroll rounds.
func (c *Crawler) WithScrollDelay(d time.Duration) *Crawler {
	c.scrollDelay = d
	return c
}

// SetProxy configures an HTTP/HTTPS or SOCKS5 proxy for the HTTP client.
// Connection pooling and keep-alive settings are preserved.
func (c *Crawler) SetProxy(proxyAddr string) error {
	if proxyAddr == "" {
		c.client.Transport = defaultTransport()
		c.proxy = ""
		return nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}

	base := defaultTransport()

	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
		c.client.Transport = base
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
		c.client.Transport = base
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}

	c.proxy = proxyAddr
	return nil
}

// Crawl scrapes up to limit videos from the For You feed. Feed items that
// fail extraction are skipped; the crawl keeps whatever it collected when
// an error stops it early.
func (c *Crawler) Crawl(ctx context.Context, limit int) ([]*Tiktok, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("crawl: limit must be positive")
	}
	if c.page == nil {
		return nil, ErrBrowserNotReady
	}

	var records []*Tiktok
	seen := make(map[string]bool)
	emptyRounds := 0

	for len(records) < limit {
		if err := ctx.Err(); err != nil {
			return records, fmt.Errorf("crawl: %w", err)
		}

		items, err := c.page.Elements(feedItemSelector)
		if err != nil {
			return records, fmt.Errorf("find feed items: %w", err)
		}

		added := 0
		for _, el := range items {
			if len(records) >= limit {
				break
			}
			rec, err := c.extractTiktok(el)
			if err != nil {
				debugLog("skip feed item: %v", err)
				continue
			}
			key := crawlKey(rec)
			if seen[key] {
				continue
			}
			seen[key] = true
			records = append(records, rec)
			added++
		}
		debugLog("crawl round: items=%d added=%d total=%d", len(items), added, len(records))

		if len(records) >= limit {
			break
		}
		if added == 0 {
			emptyRounds++
			if emptyRounds >= 3 {
				break
			}
		} else {
			emptyRounds = 0
		}

		c.waitForScroll()
		if err := c.scrollFeed(); err != nil {
			return records, fmt.Errorf("scroll feed: %w", err)
		}
	}

	return records, nil
}

// crawlKey identifies a feed item across scroll rounds. Record ids are
// freshly assigned per extraction, so the key is built from scraped
// content — and it must stay stable for items whose video source has not
// loaded yet, or a still-mounted item gets collected again every round.
func crawlKey(rec *Tiktok) string {
	return rec.Author.Link + "\x00" + rec.Caption.Text + "\x00" + rec.Media.Link
}

// waitForScroll enforces the minimum delay between feed scroll rounds.
func (c *Crawler) waitForScroll() {
	c.scrollMu.Lock()
	defer c.scrollMu.Unlock()
	c.throttle(&c.lastScroll, c.scrollDelay)
}

// throttle sleeps if needed to enforce min delay + jitter between rounds.
func (c *Crawler) throttle(lastReq *time.Time, delay time.Duration) {
	if delay == 0 {
		return
	}
	elapsed := time.Since(*lastReq)
	jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
	wait := delay + jitter - elapsed
	if wait > 0 {
		time.Sleep(wait)
	}
	*lastReq = time.Now()
}

// GetCookies returns the current session cookies for tiktok.com.
func (c *Crawler) GetCookies() []*http.Cookie {
	return c.client.Jar.Cookies(tiktokURL)
}

// SetCookies sets session cookies on the HTTP client.
func (c *Crawler) SetCookies(cookies []*http.Cookie) {
	c.client.Jar.SetCookies(tiktokURL, cookies)
}

// SaveCookies writes session cookies to a JSON file.
func (c *Crawler) SaveCookies(path string) error {
	data, err := json.Marshal(c.GetCookies())
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// LoadCookies reads cookies from a JSON file and sets them on the client.
func (c *Crawler) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cookies file: %w", err)
	}
	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("unmarshal cookies: %w", err)
	}
	c.SetCookies(cookies)
	c.isLogged = true
	return nil
}

// IsLoggedIn reports whether the crawler has an active session.
func (c *Crawler) IsLoggedIn() bool {
	return c.isLogged
}

// Close releases all resources including the headless browser if running.
func (c *Crawler) Close() error {
	return c.closeBrowser()
}
