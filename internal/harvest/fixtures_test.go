package harvest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/user/job-harvester/internal/monitoring"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testBaseURL = "https://www.linkedin.com/jobs/search/"

func card(title, company, location, href string) string {
	var b strings.Builder
	b.WriteString(`<div class="base-card relative">`)
	if href != "" {
		fmt.Fprintf(&b, `<a class="base-card__full-link absolute" href="%s"><span class="sr-only">%s</span></a>`, href, title)
	}
	b.WriteString(`<div class="base-search-card__info">`)
	if title != "" {
		fmt.Fprintf(&b, `<h3 class="base-search-card__title">
            %s
        </h3>`, title)
	}
	if company != "" {
		fmt.Fprintf(&b, `<h4 class="base-search-card__subtitle"><a href="#">  %s  </a></h4>`, company)
	}
	if location != "" {
		fmt.Fprintf(&b, `<div class="base-search-card__metadata"><span class="job-search-card__location">
  %s
</span></div>`, location)
	}
	b.WriteString(`</div></div>`)
	return b.String()
}

func page(cards ...string) []byte {
	return []byte(`<html><body><ul class="jobs-search__results-list">` +
		strings.Join(cards, "\n") +
		`</ul></body></html>`)
}

type fetchResult struct {
	body []byte
	err  error
}

// stubFetcher replays canned results keyed by URL and records every call.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]fetchResult
	calls   []string
	headers []map[string]string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{pages: make(map[string]fetchResult)}
}

func (f *stubFetcher) on(url string, body []byte, err error) {
	f.pages[url] = fetchResult{body: body, err: err}
}

func (f *stubFetcher) Fetch(_ context.Context, url string, headers map[string]string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.headers = append(f.headers, headers)
	res, ok := f.pages[url]
	if !ok {
		return page(), nil
	}
	return res.body, res.err
}

type testHarvester struct {
	*Harvester
	logs   *observer.ObservedLogs
	sleeps []time.Duration
	now    time.Time
}

func newTestHarvester(t *testing.T, f Fetcher) *testHarvester {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	extractor, err := NewExtractor(DefaultSelectors, testBaseURL)
	require.NoError(t, err)

	th := &testHarvester{
		logs: logs,
		now:  time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}
	extractor.now = func() time.Time { return th.now }

	th.Harvester = NewHarvester(f, extractor,
		monitoring.NewMetrics(prometheus.NewRegistry()),
		zap.New(core).Named("JobScraper"),
		Options{
			BaseURL:  testBaseURL,
			MinDelay: 2 * time.Second,
			MaxDelay: 5 * time.Second,
		})
	th.Harvester.sleep = func(d time.Duration) { th.sleeps = append(th.sleeps, d) }
	return th
}
