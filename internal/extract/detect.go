package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/applytrack/applytrackd/internal/selectors"
)

// IsApplyClick reports whether a click on target means the user triggered a
// job application. The target and its ancestor chain are tested against the
// site's apply-button selectors first; unmatched clicks fall back to "the
// element is a button or link whose text contains the word apply". Callers
// delegate from a single capture-phase listener, so one physical click is
// tested exactly once no matter how many ancestors would match.
func IsApplyClick(target *goquery.Selection, cfg *selectors.SiteConfig) bool {
	if target == nil || target.Length() == 0 {
		return false
	}
	for _, sel := range cfg.ApplyButtons {
		// goquery treats an invalid selector as matching nothing, which is
		// exactly the behavior we want for board-specific selector drift.
		if target.Is(sel) || target.Closest(sel).Length() > 0 {
			return true
		}
	}
	if target.Is("button, a") && strings.Contains(strings.ToLower(target.Text()), "apply") {
		return true
	}
	return false
}

// FindTarget resolves the wire form of a clicked element (a CSS path supplied
// by the page side) back into a selection. Invalid or unmatched paths return
// an empty selection.
func FindTarget(doc *goquery.Document, cssPath string) *goquery.Selection {
	return doc.Find(cssPath).First()
}
