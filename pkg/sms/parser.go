// Package sms extracts transaction details from bank SMS notifications.
package sms

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pattern is a named regular expression whose first capture group holds the
// extracted value.
type Pattern struct {
	Name   string
	Regexp *regexp.Regexp
}

const number = `(\d[\d,]*(?:\.\d{1,2})?)`

// Patterns are tried in order and the first match wins.
var (
	AmountPatterns = []Pattern{
		{Name: "rupee_prefix", Regexp: regexp.MustCompile(`(?i)Rs\.?\s*` + number)},
		{Name: "debited_by", Regexp: regexp.MustCompile(`(?i)debited by\s*` + number)},
		{Name: "debited_for", Regexp: regexp.MustCompile(`(?i)debited for\s*Rs\.?\s*` + number)},
	}

	DatePatterns = []Pattern{
		{Name: "numeric", Regexp: regexp.MustCompile(`(\d{2}[-/]\d{2}[-/]\d{4}|\d{2}[-/]\d{2}[-/]\d{2})`)},
		{Name: "compact", Regexp: regexp.MustCompile(`(\d{2}[A-Za-z]{3}\d{2})`)},
		{Name: "dashed_month_name", Regexp: regexp.MustCompile(`(\d{2}-[A-Za-z]{3}-\d{2})`)},
	}

	MerchantPatterns = []Pattern{
		{Name: "credited", Regexp: regexp.MustCompile(`(?i)([A-Z\s]+)\scredited\.`)},
		{Name: "trf_to", Regexp: regexp.MustCompile(`(?i)trf to\s+([A-Z\s]+?)(?:\s+P?\s*Refno|[\\.,]|$)`)},
		{Name: "paid_to", Regexp: regexp.MustCompile(`(?i)paid to\s+([^,]+)`)},
		{Name: "sent_to", Regexp: regexp.MustCompile(`(?i)sent to\s+([^,]+)`)},
		{Name: "to", Regexp: regexp.MustCompile(`(?i)to\s+([A-Z\s]+)`)},
	}
)

// Result holds the fields extracted from one SMS.
type Result struct {
	// Amount is nil when no amount pattern matched.
	Amount       *float64  `json:"amount"`
	Date         time.Time `json:"date"`
	MerchantName string    `json:"merchantName"`
	SmsText      string    `json:"smsText"`
}

// Config holds configuration for the parser.
type Config struct {
	// Location is used to build parsed dates. Defaults to time.Local.
	Location *time.Location
	// Now is the clock used when the SMS carries no usable date. Defaults to time.Now.
	Now func() time.Time
}

// Parser extracts amounts, dates and merchants from SMS text.
type Parser struct {
	loc *time.Location
	now func() time.Time
}

// New creates a new parser.
func New(cfg Config) *Parser {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Parser{loc: cfg.Location, now: cfg.Now}
}

var defaultParser = New(Config{})

// Parse extracts transaction details using the local time zone and clock.
func Parse(text string) Result {
	return defaultParser.Parse(text)
}

// Parse extracts transaction details from text. It never fails: fields that
// cannot be found are left empty, and the date falls back to the current time.
// Dates that do not exist on the calendar, such as 31-02-25, also fall back to
// the current time instead of rolling over into the next month.
func (p *Parser) Parse(text string) Result {
	res := Result{
		Date:    p.now().In(p.loc),
		SmsText: text,
	}

	if raw, ok := firstMatch(AmountPatterns, text); ok {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64); err == nil {
			res.Amount = &amount
		}
	}

	// Only the first matching date pattern is considered, even if its value
	// turns out not to be a real calendar date.
	if raw, ok := firstMatch(DatePatterns, text); ok {
		if date, ok := p.parseDate(raw); ok {
			res.Date = date
		}
	}

	if raw, ok := firstMatch(MerchantPatterns, text); ok {
		res.MerchantName = strings.TrimSpace(raw)
	}

	return res
}

func firstMatch(patterns []Pattern, text string) (string, bool) {
	for _, p := range patterns {
		if m := p.Regexp.FindStringSubmatch(text); len(m) > 1 {
			return m[1], true
		}
	}
	return "", false
}

// parseDate handles DD-MM-YYYY, DD/MM/YY, DD-Mon-YY and DDMonYY.
func (p *Parser) parseDate(raw string) (time.Time, bool) {
	var dayStr, monthStr, yearStr string

	if strings.ContainsAny(raw, "-/") {
		parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '-' || r == '/' })
		if len(parts) != 3 {
			return time.Time{}, false
		}
		dayStr, monthStr, yearStr = parts[0], parts[1], parts[2]
	} else {
		if len(raw) != 7 {
			return time.Time{}, false
		}
		dayStr, monthStr, yearStr = raw[:2], raw[2:5], raw[5:]
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, false
	}
	if len(yearStr) == 2 {
		year += 2000
	}

	month, ok := parseMonth(monthStr)
	if !ok {
		return time.Time{}, false
	}

	if day < 1 || day > daysIn(month, year) {
		return time.Time{}, false
	}

	return time.Date(year, month, day, 0, 0, 0, 0, p.loc), true
}

func parseMonth(s string) (time.Month, bool) {
	if len(s) == 3 && !isDigits(s) {
		t, err := time.Parse("Jan", cases.Title(language.English).String(s))
		if err != nil {
			return 0, false
		}
		return t.Month(), true
	}

	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return time.Month(m), true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
