package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/applytrack/applytrackd/internal/models"
)

func TestParseSalary(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"$100,000 - $120,000", 110000},
		{"$100k", 100},
		{"90000 EUR", 90000},
		{"80000-100000", 90000},
		{"competitive", 0},
		{"", 0},
		{"Not specified", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseSalary(c.in), "input %q", c.in)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	records := []models.JobRecord{
		{Company: "Acme", Status: models.StatusApplied, Location: "Berlin", Salary: "$100,000 - $120,000", AppliedDate: "2024/03/14"},
		{Company: "Beta", Status: models.StatusApplied, Location: "Berlin", AppliedDate: "2024/03/10"},
		{Company: "Gamma", Status: models.StatusInterview, Location: "", Salary: "90000", AppliedDate: "2024/02/01"},
		{Company: "Delta", Status: models.StatusRejected, Location: "Remote", AppliedDate: "not-a-date"},
	}

	s := NewStatsService()
	sum := s.Summarize(records, now)

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.ThisWeek)
	assert.Equal(t, 2, sum.StatusCounts["applied"])
	assert.Equal(t, 1, sum.StatusCounts["interview"])
	assert.Equal(t, 1, sum.StatusCounts["rejected"])
	assert.Equal(t, 2, sum.LocationCount["Berlin"])
	assert.Equal(t, 1, sum.LocationCount["Unknown"])
	assert.Equal(t, 1, sum.LocationCount["Remote"])

	// Two records in the last 30 days; the unparseable date is skipped.
	assert.InDelta(t, 2.0/30, sum.DailyAverage, 1e-9)
	assert.InDelta(t, 2.0/4, sum.WeeklyAverage, 1e-9)

	// (110000 + 90000) / 2
	assert.Equal(t, 100000, sum.AverageSalary)

	assert.Equal(t, 1, sum.Daily["2024/03/14"])
	assert.Equal(t, 1, sum.Monthly["2024-02"])
	assert.Equal(t, 2, sum.Monthly["2024-03"])
}

func TestSummarizeWeeklyBucketsStartSunday(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	// 2024/03/11 is a Monday, 2024/03/13 a Wednesday: same Sunday bucket.
	records := []models.JobRecord{
		{Company: "A", Status: models.StatusApplied, AppliedDate: "2024/03/11"},
		{Company: "B", Status: models.StatusApplied, AppliedDate: "2024/03/13"},
	}

	sum := NewStatsService().Summarize(records, now)
	assert.Equal(t, 2, sum.Weekly["2024/03/10"])
}

func TestSummarizeRecentCapsAtFive(t *testing.T) {
	records := []models.JobRecord{
		{Company: "A", AppliedDate: "2024/01/01"},
		{Company: "B", AppliedDate: "2024/01/07"},
		{Company: "C", AppliedDate: "2024/01/03"},
		{Company: "D", AppliedDate: "2024/01/06"},
		{Company: "E", AppliedDate: "2024/01/02"},
		{Company: "F", AppliedDate: "2024/01/05"},
	}

	sum := NewStatsService().Summarize(records, time.Now())
	require.Len(t, sum.Recent, 5)
	assert.Equal(t, "B", sum.Recent[0].Company)
	assert.Equal(t, "D", sum.Recent[1].Company)
	assert.NotContains(t, []string{
		sum.Recent[0].Company, sum.Recent[1].Company, sum.Recent[2].Company,
		sum.Recent[3].Company, sum.Recent[4].Company,
	}, "A")
}

func TestSummarizeEmpty(t *testing.T) {
	sum := NewStatsService().Summarize(nil, time.Now())
	assert.Equal(t, 0, sum.Total)
	assert.Equal(t, 0, sum.AverageSalary)
	assert.Empty(t, sum.Recent)
}

func TestFilter(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	records := []models.JobRecord{
		{Company: "Acme Corp", Status: models.StatusApplied, AppliedDate: "2024/03/14"},
		{Company: "Beta Labs", Status: models.StatusInterview, AppliedDate: "2024/03/01"},
		{Company: "Acme Europe", Status: models.StatusApplied, AppliedDate: "2024/01/01"},
	}
	s := NewStatsService()

	byStatus := s.Filter(records, "applied", "", 0, now)
	require.Len(t, byStatus, 2)

	byCompany := s.Filter(records, "", "acme", 0, now)
	require.Len(t, byCompany, 2)
	assert.Equal(t, "Acme Corp", byCompany[0].Company)

	byDays := s.Filter(records, "", "", 7, now)
	require.Len(t, byDays, 1)
	assert.Equal(t, "Acme Corp", byDays[0].Company)

	combined := s.Filter(records, "applied", "acme", 90, now)
	require.Len(t, combined, 2)

	all := s.Filter(records, "", "", 0, now)
	assert.Len(t, all, 3)
}
