package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/japaniel/vocabforge/pkg/db"
	"github.com/japaniel/vocabforge/pkg/extract"
)

// maxPageSize caps a fetched web page.
const maxPageSize = 10 * 1024 * 1024

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch a web article and ingest its vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL, _ := cmd.Flags().GetString("url")
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		if rawURL == "" {
			return fmt.Errorf("--url is required")
		}
		pageURL, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("parse url: %w", err)
		}

		ctx := cmd.Context()
		a, err := setup(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		a.log.WithField("url", rawURL).Info("fetching")
		body, err := fetchPage(ctx, &http.Client{Timeout: 30 * time.Second}, rawURL, maxPageSize)
		if err != nil {
			return err
		}

		art, err := extract.ParseArticle(body, pageURL)
		if err != nil {
			return fmt.Errorf("extract article: %w", err)
		}
		title := art.Title
		if title == "" {
			title = rawURL
		}
		a.log.WithFields(logrus.Fields{"title": title, "site": art.SiteName}).Info("article extracted")

		bookID, err := a.store.UpsertBook(ctx, db.BookInput{Title: title, Author: art.Byline}, overwrite)
		if err != nil {
			return err
		}
		return a.ingest(ctx, cmd, bookID, body, extract.FormatHTML)
	},
}

// fetchPage downloads a page with browser-like headers so that sites which
// block bare clients still answer. Bodies larger than limit are rejected.
func fetchPage(ctx context.Context, client *http.Client, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got status code %d", resp.StatusCode)
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, limit)
	}

	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response body exceeded maximum size of %d bytes", limit)
	}
	return body, nil
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().String("url", "", "article URL")
	fetchCmd.Flags().Bool("overwrite", false, "replace metadata of an existing book with the same title")
}
