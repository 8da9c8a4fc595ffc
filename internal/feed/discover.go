package feed

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	appLog "eventclass/internal/log"
)

// DefaultDiscoverTimeout bounds a single page visit. The chamber
// calendar is a GrowthZone app that builds the month grid client-side,
// so discovery needs a real DOM rather than a plain HTTP GET.
const DefaultDiscoverTimeout = 30 * time.Second

var detailSlugRe = regexp.MustCompile(`/events/details/([^/?#]+)`)

// Discoverer finds event detail pages on month-calendar views and the
// ICS link on each detail page, using headless Chromium.
type Discoverer struct {
	// Base is the site root used to resolve relative links and to
	// construct fallback ICS URLs, e.g. "https://business.example.com".
	Base string

	// Timeout bounds each page visit. If zero, DefaultDiscoverTimeout
	// is used.
	Timeout time.Duration
}

// EventPages renders a month-calendar URL and returns the event detail
// links it contains, de-duplicated with order preserved.
func (d *Discoverer) EventPages(parentCtx context.Context, monthURL string) ([]string, error) {
	if monthURL == "" {
		return nil, fmt.Errorf("discover: month URL is required")
	}

	var hrefs []string
	err := d.run(parentCtx, monthURL, chromedp.Tasks{
		chromedp.Navigate(monthURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Small extra delay so the month grid finishes populating.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Evaluate(
			`Array.from(document.querySelectorAll('a[href*="/events/details"]')).map(a => a.href)`,
			&hrefs,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("discover: month page %s: %w", monthURL, err)
	}

	// Delete redundant copies while preserving order.
	seen := make(map[string]bool)
	unique := make([]string, 0, len(hrefs))
	for _, h := range hrefs {
		h = d.absolute(h)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		unique = append(unique, h)
	}

	appLog.Info("discover: month page scanned", "url", monthURL, "event_pages", len(unique))
	return unique, nil
}

// ICSLink renders an event detail page and returns its "Add to
// Calendar - iCal" ICS URL. When the anchor cannot be found, the ICS
// URL is constructed from the detail slug, which GrowthZone serves at
// /events/ical/<slug>.ics.
func (d *Discoverer) ICSLink(parentCtx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("discover: event page URL is required")
	}

	var href string
	err := d.run(parentCtx, pageURL, chromedp.Tasks{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(300 * time.Millisecond),
		chromedp.Evaluate(`(() => {
			const direct = document.querySelector('a[href$=".ics"]');
			if (direct) return direct.href;
			const anchors = Array.from(document.querySelectorAll('a'));
			const ical = anchors.find(a => /add to calendar\s*-\s*ical/i.test(a.textContent || ''));
			return ical ? ical.href : '';
		})()`, &href),
	})
	if err != nil {
		return "", fmt.Errorf("discover: event page %s: %w", pageURL, err)
	}
	if href != "" {
		return d.absolute(href), nil
	}

	// Fallback: construct the ICS URL from the event detail slug.
	if m := detailSlugRe.FindStringSubmatch(pageURL); m != nil {
		return d.absolute("/events/ical/" + m[1] + ".ics"), nil
	}
	return "", fmt.Errorf("discover: no ICS link on %s and URL has no detail slug", pageURL)
}

func (d *Discoverer) run(parentCtx context.Context, pageURL string, tasks chromedp.Tasks) error {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, timeout)
	defer timeoutCancel()

	return chromedp.Run(ctx, tasks)
}

// absolute resolves a possibly-relative link against Base.
func (d *Discoverer) absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	base, err := url.Parse(d.Base)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}
