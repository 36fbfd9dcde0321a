package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/applytrack/applytrackd/internal/models"
	"github.com/applytrack/applytrackd/internal/selectors"
)

// Placeholder values used when a field survives every fallback empty. The
// stored data already contains these strings, so they must not change.
const (
	UnknownCompany  = "Unknown Company"
	UnknownPosition = "Unknown Position"
	UnknownLocation = "Unknown Location"
	NotSpecified    = "Not specified"
)

// minDescriptionLen rejects empty or placeholder description containers.
const minDescriptionLen = 40

// maxBodyDescription caps the last-resort body-text description.
const maxBodyDescription = 1000

// Label patterns for the body-text scan, compiled once, in priority order.
var (
	locationLabels = labelPatterns("Location", "Office", "City")
	salaryLabels   = labelPatterns("Salary", "Compensation", "Pay")
)

func labelPatterns(labels ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(labels))
	for i, label := range labels {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[:\s]+([^\n\r]+)`)
	}
	return out
}

// genericDescription is tried when the site has no description selectors or
// none of them matched. Ordered roughly from most to least specific.
var genericDescription = []string{
	".description__text",
	".job-description",
	".job-desc",
	".jobDescriptionContent",
	".job-description-content",
	".description",
	`[data-testid="jobDescriptionText"]`,
	`[data-attr="job-description"]`,
	".jobDescription",
	".job-body",
	".job-content",
	".job-details",
	".job-details-content",
	".job-details__content",
	".job-details__description",
	".job-details__main-content",
	".job-details__text",
	".job-details__body",
	".job-details__section",
	".job-details__section--description",
	".job-details__section-content",
	".job-details__section-body",
	".job-details__section-text",
	".job-details__section-main",
	".job-details__section-description",
}

// Extract builds a DraftCapture from the page document using the matched
// site's selectors. It never fails: selector misses degrade through the label
// scan and finally to placeholder strings, so company/position/location/salary
// always come back non-empty. Description may stay empty. Pure read, no
// network, no document mutation.
func Extract(doc *goquery.Document, entry *selectors.SiteEntry, pageURL string) models.DraftCapture {
	cfg := entry.Config
	bodyText := doc.Find("body").Text()

	company := text(doc, cfg.Company)
	position := text(doc, cfg.Position)
	location := text(doc, cfg.Location)
	salary := text(doc, cfg.Salary)

	if location == "" {
		location = byLabels(bodyText, locationLabels)
	}
	if salary == "" {
		salary = byLabels(bodyText, salaryLabels)
	}

	return models.DraftCapture{
		Company:     fallback(company, UnknownCompany),
		Position:    fallback(position, UnknownPosition),
		Location:    fallback(location, UnknownLocation),
		Salary:      fallback(salary, NotSpecified),
		Description: description(doc, cfg.Description, bodyText),
		URL:         pageURL,
		Site:        entry.Match,
		ExtractedAt: time.Now().Format(time.RFC3339),
	}
}

// text runs a combined comma-separated selector and returns the first
// document-order match's trimmed text, or "".
func text(doc *goquery.Document, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// byLabels scans the rendered body text for "<label>: value" lines, in label
// priority order, and returns the first non-empty value.
func byLabels(bodyText string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(bodyText); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// description tries the site's own description containers, then the generic
// list, then the first long paragraph, then a truncated slice of the body
// text. Every selector hit must clear minDescriptionLen so placeholder
// containers don't win.
func description(doc *goquery.Document, siteSelectors []string, bodyText string) string {
	for _, sel := range siteSelectors {
		if t := longText(doc, sel); t != "" {
			return t
		}
	}
	for _, sel := range genericDescription {
		if t := longText(doc, sel); t != "" {
			return t
		}
	}

	var para string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := strings.TrimSpace(s.Text()); len(t) > minDescriptionLen {
			para = t
			return false
		}
		return true
	})
	if para != "" {
		return para
	}

	body := strings.TrimSpace(bodyText)
	if len(body) > 100 {
		// Cap by rune so a multi-byte character is never cut mid-sequence.
		if runes := []rune(body); len(runes) > maxBodyDescription {
			return string(runes[:maxBodyDescription]) + "..."
		}
		return body
	}
	return ""
}

func longText(doc *goquery.Document, selector string) string {
	t := strings.TrimSpace(doc.Find(selector).First().Text())
	if len(t) > minDescriptionLen {
		return t
	}
	return ""
}

func fallback(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
