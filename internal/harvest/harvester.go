package harvest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/internal/monitoring"
	"go.uber.org/zap"
)

const DefaultMaxPages = 2

// Options configures a Harvester.
type Options struct {
	BaseURL        string
	Headers        map[string]string
	RequestTimeout time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
}

// Stats counts the work done by one call to Harvest.
type Stats struct {
	Queries int
	Pages   int
}

// Harvester walks the search result pages of each query, one request at a
// time, and appends every complete listing to the caller's Results.
type Harvester struct {
	fetcher   Fetcher
	extractor *Extractor
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	baseURL   string
	headers   map[string]string
	timeout   time.Duration
	delay     func() time.Duration
	sleep     func(time.Duration)
}

func NewHarvester(f Fetcher, e *Extractor, m *monitoring.Metrics, l *zap.Logger, opts Options) *Harvester {
	headers := opts.Headers
	if headers == nil {
		headers = DefaultHeaders
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Harvester{
		fetcher:   f,
		extractor: e,
		metrics:   m,
		logger:    l,
		baseURL:   opts.BaseURL,
		headers:   headers,
		timeout:   timeout,
		delay:     randomDelay(opts.MinDelay, opts.MaxDelay),
		sleep:     time.Sleep,
	}
}

// Harvest runs every query in order. It never fails: problems are logged
// and confined to the page or card where they happened.
func (h *Harvester) Harvest(queries []domain.Query, maxPages int, results *domain.Results) Stats {
	h.logger.Info("Starting LinkedIn scrape for multiple job titles and locations",
		zap.Int("queries", len(queries)))

	stats := Stats{Queries: len(queries)}
	for _, q := range queries {
		stats.Pages += h.HarvestQuery(q, maxPages, results)
	}

	h.logger.Info("LinkedIn scraping complete", zap.Int("jobs", results.Len()))
	return stats
}

// HarvestQuery fetches up to maxPages pages for q and returns how many
// requests it made. Paging stops early on an empty page or a failed page.
func (h *Harvester) HarvestQuery(q domain.Query, maxPages int, results *domain.Results) int {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	h.logger.Info(fmt.Sprintf("Searching for %s in %s", q.Keyword, q.LocationLabel()))

	requested := 0
	for page := 0; page < maxPages; page++ {
		req := domain.PageRequest{Query: q, Index: page}
		requested++

		cards, err := h.harvestPage(req, results)
		if err != nil {
			h.logger.Error("error scraping page",
				zap.String("keyword", q.Keyword),
				zap.String("location", q.Location),
				zap.Int("page", page+1),
				zap.Error(err))
			return requested
		}
		if cards == 0 {
			h.logger.Warn("no job cards found",
				zap.String("keyword", q.Keyword),
				zap.String("location", q.Location),
				zap.Int("page", page+1))
			return requested
		}

		h.sleep(h.delay())
	}
	return requested
}

// harvestPage fetches and parses one page and returns the number of job
// cards found on it.
func (h *Harvester) harvestPage(req domain.PageRequest, results *domain.Results) (cards int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page handling panicked: %v", r)
		}
	}()

	pageURL := req.URL(h.baseURL)
	h.logger.Info(fmt.Sprintf("Scraping page %d", req.Index+1), zap.String("url", pageURL))

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	body, err := h.fetcher.Fetch(ctx, pageURL, h.headers)
	if err != nil {
		h.metrics.IncPagesFetched("failed")
		h.metrics.IncErrorsTotal("fetch_failed")
		return 0, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		h.metrics.IncPagesFetched("failed")
		h.metrics.IncErrorsTotal("parse_failed")
		return 0, fmt.Errorf("parse html: %w", err)
	}

	found := doc.Find(h.extractor.selectors.Card)
	if found.Length() == 0 {
		h.metrics.IncPagesFetched("empty")
		return 0, nil
	}
	h.metrics.IncPagesFetched("ok")

	found.Each(func(_ int, card *goquery.Selection) {
		h.collect(card, req.Query, results)
	})
	return found.Length(), nil
}

func (h *Harvester) collect(card *goquery.Selection, q domain.Query, results *domain.Results) {
	listing, ok, err := h.extractor.Extract(card, q)
	if err != nil {
		h.logger.Error("error parsing job card", zap.Error(err))
		h.metrics.IncErrorsTotal("extract_failed")
		h.metrics.IncListingsDiscarded()
		return
	}
	if !ok {
		h.metrics.IncListingsDiscarded()
		return
	}

	results.Append(listing)
	h.metrics.IncListingsExtracted()
	h.logger.Info(fmt.Sprintf("Scraped job: %s at %s", listing.Title, listing.Company))
}
