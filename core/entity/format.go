package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"

	DefaultCurrency = "₹"
	dateLayout      = "02 Jan 2006"
)

var (
	clock24Regex = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
	clock12Regex = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

	knownCurrencies = []string{"₹", "$", "€", "£"}

	dateLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// ClassifyStatus applies the active-flag coercion rule.
// known is false when v has a type the rule does not cover; such values are inactive.
func ClassifyStatus(v interface{}) (active, known bool) {
	switch val := v.(type) {
	case nil:
		return false, true
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1":
			return true, true
		default:
			return false, true
		}
	default:
		if f, ok := toFloat(v); ok {
			return f > 0, true
		}
		return false, false
	}
}

// StatusLabel maps an active flag of any encoding to "Active" or "Inactive".
func StatusLabel(v interface{}) string {
	if active, _ := ClassifyStatus(v); active {
		return StatusActive
	}
	return StatusInactive
}

// FormatMoney prefixes amounts with the currency glyph exactly once.
func FormatMoney(v interface{}, glyph string) string {
	if glyph == "" {
		glyph = DefaultCurrency
	}
	if f, ok := toFloat(v); ok {
		if f == float64(int64(f)) {
			return glyph + strconv.FormatInt(int64(f), 10)
		}
		return glyph + strconv.FormatFloat(f, 'f', 2, 64)
	}
	s, ok := v.(string)
	if !ok {
		return NotAvailable
	}
	s = strings.ReplaceAll(s, glyph, "")
	for _, c := range knownCurrencies {
		s = strings.ReplaceAll(s, c, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return NotAvailable
	}
	return glyph + s
}

// FormatTime converts "HH:MM" and "HH:MM:SS" to "h:mm AM/PM".
// Values already in 12-hour form are normalized; anything else is returned unchanged.
func FormatTime(v interface{}) string {
	s, ok := Stringify(v)
	if !ok {
		return NotAvailable
	}
	s = strings.TrimSpace(s)

	if m := clock12Regex.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h >= 1 && h <= 12 {
			return fmt.Sprintf("%d:%s %s", h, m[2], strings.ToUpper(m[3]))
		}
		return s
	}

	m := clock24Regex.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	if h > 23 || min > 59 {
		return s
	}
	meridiem := "AM"
	if h >= 12 {
		meridiem = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%s %s", h, m[2], meridiem)
}

// FormatDate renders ISO dates as "02 Jan 2006"; other values are returned unchanged.
func FormatDate(v interface{}) string {
	s, ok := Stringify(v)
	if !ok {
		return NotAvailable
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return s
}
