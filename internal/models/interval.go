package models

import "strings"

// Interval is the sampling granularity of a price series
type Interval int

const (
	IntervalDay Interval = iota
	IntervalFiveDays
	IntervalWeek
	IntervalMonth
	IntervalQuarter
)

var intervalNames = [...]string{
	IntervalDay:      "1 day",
	IntervalFiveDays: "5 days",
	IntervalWeek:     "1 week",
	IntervalMonth:    "1 month",
	IntervalQuarter:  "3 months",
}

var intervalCodes = [...]string{
	IntervalDay:      "1d",
	IntervalFiveDays: "5d",
	IntervalWeek:     "1wk",
	IntervalMonth:    "1mo",
	IntervalQuarter:  "3mo",
}

// Intervals returns every interval in display order.
func Intervals() []Interval {
	return []Interval{IntervalDay, IntervalFiveDays, IntervalWeek, IntervalMonth, IntervalQuarter}
}

// ParseInterval resolves a display name ("1 day") to an Interval.
func ParseInterval(name string) (Interval, error) {
	name = strings.TrimSpace(name)
	for i, n := range intervalNames {
		if n == name {
			return Interval(i), nil
		}
	}
	return 0, &ConfigurationError{Field: "interval", Value: name}
}

// String returns the display name.
func (i Interval) String() string {
	if i < 0 || int(i) >= len(intervalNames) {
		return "unknown"
	}
	return intervalNames[i]
}

// Code returns the data-source interval code (1d, 5d, 1wk, 1mo, 3mo).
func (i Interval) Code() string {
	if i < 0 || int(i) >= len(intervalCodes) {
		return ""
	}
	return intervalCodes[i]
}

// MarshalText encodes the interval as its display name.
func (i Interval) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText decodes a display name.
func (i *Interval) UnmarshalText(b []byte) error {
	v, err := ParseInterval(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
