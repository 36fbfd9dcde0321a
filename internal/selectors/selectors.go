package selectors

import "strings"

// SiteConfig holds the CSS selectors for one job board. Each field selector is
// a comma-separated list tried as a single combined query: the engine returns
// the first match in document order across all alternatives.
type SiteConfig struct {
	Company      string
	Position     string
	Location     string
	Salary       string
	ApplyButtons []string
	// Description selectors are tried in order, each gated on a minimum text
	// length so empty placeholder containers don't win.
	Description []string
}

// SiteEntry pairs a hostname-substring matcher with its config.
type SiteEntry struct {
	Match  string
	Config SiteConfig
}

// Lookup returns the first entry whose Match is contained in hostname, or nil.
// Slice order encodes priority. A nil result means the extraction logic does
// not activate for this page at all.
func Lookup(hostname string) *SiteEntry {
	for i := range Sites {
		if strings.Contains(hostname, Sites[i].Match) {
			return &Sites[i]
		}
	}
	return nil
}

// Sites is the per-board selector table. The selector strings come from the
// boards' rendered markup, including legacy class names that still appear on
// cached pages.
var Sites = []SiteEntry{
	{
		Match: "linkedin.com",
		Config: SiteConfig{
			Company:  ".job-details-jobs-unified-top-card__company-name a, .jobs-unified-top-card__company-name a, .job-details-jobs-unified-top-card__company-name, .topcard__org-name-link, .topcard__flavor-row a, .topcard__org-name-link",
			Position: ".job-details-jobs-unified-top-card__job-title h1, .jobs-unified-top-card__job-title h1, .job-details-jobs-unified-top-card__job-title, .topcard__title, h1.topcard__title",
			Location: ".job-details-jobs-unified-top-card__primary-description-container .job-details-jobs-unified-top-card__bullet, .jobs-unified-top-card__bullet, .topcard__flavor-row, .topcard__flavor--bullet, .topcard__flavor--metadata, .topcard__flavor, .job-details-jobs-unified-top-card__location, .jobs-unified-top-card__location",
			Salary:   ".job-details-jobs-unified-top-card__salary, .jobs-unified-top-card__salary, .salary, .compensation__salary, .compensation__salary-amount, .job-criteria__text--criteria, .job-criteria__text, .job-criteria__item--salary",
			ApplyButtons: []string{
				`[data-control-name="jobdetails_topcard_inapply"]`,
				".jobs-apply-button",
				`[aria-label*="Apply"]`,
			},
			Description: []string{
				".job-details-about-the-job-module__description",
				".job-details-jobs-unified-top-card__description",
				".jobs-description__container",
				".jobs-description",
				".job-description",
			},
		},
	},
	{
		Match: "indeed.com",
		Config: SiteConfig{
			Company:  `[data-testid="inlineHeader-companyName"] a, .jobsearch-CompanyInfoWithoutHeaderImage a, .jobsearch-InlineCompanyRating + a, .jobsearch-CompanyInfoWithoutHeaderImage div, .jobsearch-CompanyInfoContainer a`,
			Position: `[data-testid="jobsearch-JobInfoHeader-title"] h1, .jobsearch-JobInfoHeader-title h1, h1[data-testid="jobsearch-JobInfoHeader-title"], .jobsearch-JobInfoHeader-title, h1`,
			Location: `[data-testid="job-location"], .jobsearch-JobInfoHeader-subtitle div, .jobsearch-CompanyInfoContainer div, .jobsearch-JobInfoHeader-subtitle, .jobsearch-CompanyInfoWithoutHeaderImage div, .jobsearch-JobInfoHeader-subtitle span`,
			Salary:   `[data-testid="jobsearch-JobMetadataHeader-item"], .jobsearch-JobMetadataHeader-item, .attribute_snippet, .salary-snippet-container, .jobsearch-JobMetadataHeader-item--salary, .jobsearch-JobMetadataHeader-item--pay, .jobsearch-JobMetadataHeader-item--compensation`,
			ApplyButtons: []string{
				"[data-jk] .ia-IndeedApplyButton",
				".indeed-apply-button",
				`[aria-label*="Apply"]`,
				`input[value*="Apply"]`,
			},
			Description: []string{
				"#jobDescriptionText",
				".jobsearch-jobDescriptionText",
				".jobsearch-JobComponent-description",
				".jobsearch-JobDescriptionSection-sectionItem",
			},
		},
	},
	{
		Match: "glassdoor.com",
		Config: SiteConfig{
			Company:  `.employerName, [data-test="employer-name"], .employer-name, .css-16nw49e, .css-1vg6q84, .employer-name a, .employer-name span`,
			Position: `.jobTitle, [data-test="job-title"], .job-title h1, .css-17x2pwl, h1, .job-title`,
			Location: `.location, [data-test="job-location"], .job-location, .css-56kyx5, .css-1v5elnn, .css-1v5elnn span, .location span`,
			Salary:   `.salary, [data-test="salary"], .salary-estimate, .css-1bluz6i, .css-1imh2hq, .css-1imh2hq span, .salary-estimate span`,
			ApplyButtons: []string{
				`[data-test="apply-btn"]`,
				".apply-btn",
				`[data-test="easy-apply-button"]`,
				`button[title*="Apply"]`,
				".apply-button",
				`[data-test="apply-button"]`,
				".applyButton",
				".apply-button-container button",
				`button[aria-label*="Apply"]`,
				`button[class*="EasyApplyButton"]`,
				`button[data-test*="easyApply"]`,
				`button[data-test="applyButton"]`,
			},
		},
	},
	{
		Match: "monster.com",
		Config: SiteConfig{
			Company:  `.company-name, [data-testid="company-name"], .company, .company-name a, .company-name span, .company-details .company-name`,
			Position: `.job-title, [data-testid="job-title"] h1, .title, h1, .job-title h1, .job-title span`,
			Location: `.location, [data-testid="location"], .job-location, .job-header .location, .job-header .location span, .location span`,
			Salary:   `.salary, [data-testid="salary"], .compensation, .job-salary, .job-salary span, .salary span`,
			ApplyButtons: []string{
				`[data-testid="apply-button"]`,
				".apply-button",
				`button[title*="Apply"]`,
				".apply-btn",
				".applyButton",
				".apply-button-container button",
				`[data-test="apply-button"]`,
				`button[data-test="easyApply"]`,
				`button[class*="EasyApplyButton"]`,
				`button[data-test="applyButton"]`,
				`button[aria-label*="Apply"]`,
			},
		},
	},
	{
		Match: "ziprecruiter.com",
		Config: SiteConfig{
			Company:  `.company_name, [data-testid="company-name"], .company, .job-header .company, .company-name, .company-name a, .company-name span`,
			Position: `.job_title, [data-testid="job-title"] h1, .title, h1, .job-title, .job-title h1, .job-title span`,
			Location: `.location, [data-testid="location"], .job-location, .job-header .location, .job-header .location span, .location span`,
			Salary:   `.salary, [data-testid="salary"], .compensation, .job-salary, .job-salary span, .salary span`,
			ApplyButtons: []string{
				`[data-testid="apply-button"]`,
				".apply_button",
				`button[title*="Apply"]`,
				".apply-btn",
				".applyButton",
				".apply-button-container button",
				`[data-test="apply-button"]`,
				`button[aria-label^="1-Click Apply"]`,
				`button[data-test="applyButton"]`,
				`button[aria-label*="Apply"]`,
				`a[aria-label*="Apply"]`,
				`a[href*="/ek/"]`,
			},
		},
	},
	{
		Match: "dice.com",
		Config: SiteConfig{
			Company:  `.company-name, [data-testid="company-name"], .company, .company-name a, .company-name span, .company-details .company-name`,
			Position: `.job-title, [data-testid="job-title"] h1, .title, h1, .job-title h1, .job-title span`,
			Location: `.location, [data-testid="location"], .job-location, .job-header .location, .job-header .location span, .location span`,
			Salary:   `.salary, [data-testid="salary"], .compensation, .job-salary, .job-salary span, .salary span`,
			ApplyButtons: []string{
				`[data-testid="apply-button"]`,
				".apply-button",
				`button[title*="Apply"]`,
				".apply-btn",
				".applyButton",
				".apply-button-container button",
				`[data-test="apply-button"]`,
				`button[data-test*="easyApply"]`,
				`button[class*="EasyApplyButton"]`,
				`button[data-test="applyButton"]`,
				`button[aria-label*="Apply"]`,
			},
		},
	},
	{
		Match: "simplyhired.com",
		Config: SiteConfig{
			Company:  `.company-name, [data-testid="company-name"], .company, .company-name a, .company-name span, .company-details .company-name`,
			Position: `.job-title, [data-testid="job-title"] h1, .title, h1, .job-title h1, .job-title span`,
			Location: `.location, [data-testid="location"], .job-location, .job-header .location, .job-header .location span, .location span`,
			Salary:   `.salary, [data-testid="salary"], .compensation, .job-salary, .job-salary span, .salary span`,
			ApplyButtons: []string{
				`[data-testid="apply-button"]`,
				".apply-button",
				`button[title*="Apply"]`,
				".apply-btn",
				".applyButton",
				".apply-button-container button",
				`[data-test="apply-button"]`,
				`button[data-test*="easyApply"]`,
				`button[class*="EasyApplyButton"]`,
				`button[data-test="applyButton"]`,
				`button[aria-label*="Apply"]`,
			},
		},
	},
}
