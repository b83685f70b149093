package harvest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/job-harvester/internal/domain"
	"github.com/user/job-harvester/pkg/utils"
)

var ErrMalformedCard = errors.New("malformed job card")

// Selectors are the structural markers of a search results page.
type Selectors struct {
	Card     string
	Title    string
	Company  string
	Location string
	Link     string
}

var DefaultSelectors = Selectors{
	Card:     "div.base-card",
	Title:    "h3.base-search-card__title",
	Company:  "h4.base-search-card__subtitle",
	Location: "span.job-search-card__location",
	Link:     "a.base-card__full-link",
}

// Extractor turns a job card into a Listing.
type Extractor struct {
	selectors Selectors
	base      *url.URL
	now       func() time.Time
}

// NewExtractor creates an Extractor. Relative links are resolved against baseURL.
func NewExtractor(selectors Selectors, baseURL string) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return &Extractor{
		selectors: selectors,
		base:      base,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Extract reads the required fields of card. ok is false when any of them is
// absent; err is set only when the card could not be read at all.
func (e *Extractor) Extract(card *goquery.Selection, q domain.Query) (listing domain.Listing, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			listing, ok, err = domain.Listing{}, false, fmt.Errorf("%w: %v", ErrMalformedCard, r)
		}
	}()

	title, found := findText(card, e.selectors.Title)
	if !found {
		return domain.Listing{}, false, nil
	}
	company, found := findText(card, e.selectors.Company)
	if !found {
		return domain.Listing{}, false, nil
	}
	location, found := findText(card, e.selectors.Location)
	if !found {
		return domain.Listing{}, false, nil
	}
	href, found := findAttr(card, e.selectors.Link, "href")
	if !found {
		return domain.Listing{}, false, nil
	}

	link, err := utils.ToAbsoluteURL(e.base, href)
	if err != nil {
		return domain.Listing{}, false, fmt.Errorf("%w: link %q: %v", ErrMalformedCard, href, err)
	}

	return domain.Listing{
		Title:            title,
		Company:          company,
		Location:         location,
		Link:             link,
		Source:           domain.SourceLinkedIn,
		CrawledAt:        e.now(),
		Experience:       domain.ExperienceUnspecified,
		SearchedTitle:    q.Keyword,
		SearchedLocation: q.Location,
	}, true, nil
}

func findText(card *goquery.Selection, selector string) (string, bool) {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	return text, text != ""
}

func findAttr(card *goquery.Selection, selector, attr string) (string, bool) {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	val, exists := sel.Attr(attr)
	val = strings.TrimSpace(val)
	return val, exists && val != ""
}
