package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage form for all record dates.
const DateLayout = "2006/01/02"

var (
	ymdRe = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	mdyRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// Today returns the local date in YYYY/MM/DD form.
func Today() string {
	return time.Now().Format(DateLayout)
}

// NormalizeDate converts an imported date value to YYYY/MM/DD. It accepts
// YYYY/MM/DD, YYYY-MM-DD, MM/DD/YYYY and spreadsheet serial numbers; anything
// else (including empty) falls back to today.
func NormalizeDate(val string) string {
	v := strings.TrimSpace(val)
	if v == "" {
		return Today()
	}
	if m := ymdRe.FindStringSubmatch(v); m != nil {
		return validDate(pad(m[1], m[2], m[3]))
	}
	if m := mdyRe.FindStringSubmatch(v); m != nil {
		return validDate(pad(m[3], m[1], m[2]))
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		return serialToDate(serial)
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Local().Format(DateLayout)
	}
	return Today()
}

// serialToDate converts a spreadsheet serial day count (days since
// 1899-12-30, the Excel epoch) to a local YYYY/MM/DD string.
func serialToDate(serial float64) string {
	epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	t := epoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
	return t.Format(DateLayout)
}

// validDate rejects shapes the regexes accept but the calendar does not, like
// a 13th month or a February 30th. Impossible dates fall back to today so they
// never sit in storage invisible to the time buckets.
func validDate(s string) string {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return Today()
	}
	return s
}

func pad(y, m, d string) string {
	if len(m) == 1 {
		m = "0" + m
	}
	if len(d) == 1 {
		d = "0" + d
	}
	return y + "/" + m + "/" + d
}
