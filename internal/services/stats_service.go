package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/applytrack/applytrackd/internal/models"
)

// Summary is the aggregate payload behind the popup counters and the chart
// modal.
type Summary struct {
	Total         int            `json:"total"`
	ThisWeek      int            `json:"thisWeek"`
	StatusCounts  map[string]int `json:"statusCounts"`
	LocationCount map[string]int `json:"locationCounts"`
	Daily         map[string]int `json:"daily"`   // YYYY/MM/DD → count
	Weekly        map[string]int `json:"weekly"`  // week start (Sunday) → count
	Monthly       map[string]int `json:"monthly"` // YYYY-MM → count
	DailyAverage  float64        `json:"dailyAverage"`  // last 30 days / 30
	WeeklyAverage float64        `json:"weeklyAverage"` // last 30 days / 4
	AverageSalary int            `json:"averageSalary"` // 0 when nothing parses
	Recent        []models.JobRecord `json:"recent"` // 5 most recent
}

var salaryRe = regexp.MustCompile(`(\d{2,6})(?:\s*[-–]\s*(\d{2,6}))?`)

// ParseSalary pulls a midpoint out of a free-text salary string: currency
// symbols and thousand separators stripped, ranges averaged. Returns 0 when
// nothing numeric is found.
func ParseSalary(salary string) float64 {
	if salary == "" {
		return 0
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(salary, "$", ""), ",", "")
	m := salaryRe.FindStringSubmatch(cleaned)
	if m == nil {
		return 0
	}
	lo, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	hi := lo
	if m[2] != "" {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			hi = v
		}
	}
	return (lo + hi) / 2
}

// StatsService aggregates Record Store contents for the summary surfaces.
// Pure in-memory; the caller supplies the record list it is displaying.
type StatsService struct{}

func NewStatsService() *StatsService { return &StatsService{} }

// Summarize computes the full chart/summary payload. Records with dates that
// do not parse are counted in totals but skipped for time buckets.
func (s *StatsService) Summarize(records []models.JobRecord, now time.Time) Summary {
	sum := Summary{
		Total:         len(records),
		StatusCounts:  map[string]int{},
		LocationCount: map[string]int{},
		Daily:         map[string]int{},
		Weekly:        map[string]int{},
		Monthly:       map[string]int{},
	}

	weekAgo := now.AddDate(0, 0, -7)
	thirtyAgo := now.AddDate(0, 0, -30)
	var salarySum float64
	var salaryN int
	var last30Daily, last30Weekly int

	for _, r := range records {
		sum.StatusCounts[string(r.Status)]++

		loc := strings.TrimSpace(r.Location)
		if loc == "" {
			loc = "Unknown"
		}
		sum.LocationCount[loc]++

		if v := ParseSalary(r.Salary); v > 0 {
			salarySum += v
			salaryN++
		}

		d, err := time.ParseInLocation(models.DateLayout, r.AppliedDate, now.Location())
		if err != nil {
			continue
		}
		if !d.Before(weekAgo) {
			sum.ThisWeek++
		}

		dayKey := d.Format(models.DateLayout)
		sum.Daily[dayKey]++
		weekStart := d.AddDate(0, 0, -int(d.Weekday()))
		sum.Weekly[weekStart.Format(models.DateLayout)]++
		sum.Monthly[d.Format("2006-01")]++

		if !d.Before(thirtyAgo) {
			last30Daily++
			last30Weekly++
		}
	}

	sum.DailyAverage = float64(last30Daily) / 30
	sum.WeeklyAverage = float64(last30Weekly) / 4
	if salaryN > 0 {
		sum.AverageSalary = int(salarySum/float64(salaryN) + 0.5)
	}

	sum.Recent = recent(records, 5)
	return sum
}

// recent returns the n most-recently-applied records, stable on ties.
func recent(records []models.JobRecord, n int) []models.JobRecord {
	sorted := make([]models.JobRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AppliedDate > sorted[j].AppliedDate
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Filter applies the table surface's filters: status equality, company
// substring (case-insensitive) and applied-within-N-days. Zero values mean
// "no filter".
func (s *StatsService) Filter(records []models.JobRecord, status, company string, days int, now time.Time) []models.JobRecord {
	out := records
	if status != "" {
		filtered := out[:0:0]
		for _, r := range out {
			if string(r.Status) == status {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}
	if company != "" {
		needle := strings.ToLower(company)
		filtered := out[:0:0]
		for _, r := range out {
			if strings.Contains(strings.ToLower(r.Company), needle) {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}
	if days > 0 {
		cutoff := now.AddDate(0, 0, -days)
		filtered := out[:0:0]
		for _, r := range out {
			d, err := time.ParseInLocation(models.DateLayout, r.AppliedDate, now.Location())
			if err == nil && !d.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}
	return out
}
