package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tiktok "github.com/RavensCloud/tiktok-harvest"
)

func main() {
	count := flag.Int("count", 10, "Number of videos to scrape from the feed")
	out := flag.String("out", "./videos", "Directory to save metadata and video files")
	proxyURL := flag.String("proxy", "", "Proxy URL (http/https/socks5)")
	cookies := flag.String("cookies", "", "Path to cookies JSON file to restore a session")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall crawl timeout")
	flag.Parse()

	c := tiktok.New()
	defer c.Close()

	if *proxyURL != "" {
		if err := c.SetProxy(*proxyURL); err != nil {
			log.Fatalf("set proxy: %v", err)
		}
	}

	if err := c.InitBrowser(); err != nil {
		log.Fatalf("init browser: %v", err)
	}
	if *cookies != "" {
		if err := c.RestoreSession(*cookies); err != nil {
			log.Fatalf("restore session: %v", err)
		}
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		log.Fatalf("create output directory: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, err := c.Crawl(ctx, *count)
	if err != nil && len(records) == 0 {
		log.Fatalf("crawl: %v", err)
	}
	if err != nil {
		log.Printf("crawl stopped early: %v", err)
	}

	saved := 0
	for _, rec := range records {
		if err := rec.Save(ctx, *out); err != nil {
			log.Printf("save %s: %v", rec.ID, err)
			continue
		}
		saved++
		fmt.Println(rec.Describe())
	}

	fmt.Printf("\nSaved %d/%d videos to %s\n", saved, len(records), *out)
}
