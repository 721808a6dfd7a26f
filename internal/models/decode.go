package models

import (
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// The backend is not consistent about field naming (`_id` vs `id`,
// snake_case vs camelCase), so records are decoded field by field against a
// list of aliases instead of through struct tags.

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstInt(r gjson.Result, paths ...string) int {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return int(v.Int())
		}
	}
	return 0
}

func firstBool(r gjson.Result, paths ...string) bool {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v.Bool()
		}
	}
	return false
}

// toCents converts a decimal amount to integer cents
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// parseTimestamp parses the date formats the backend has been seen to emit.
// Unparseable or empty values yield the zero time.
func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}

	return time.Time{}
}

// IDOf returns the identifier of a raw backend record
func IDOf(raw []byte) string {
	return firstString(gjson.ParseBytes(raw), "_id", "id")
}
