package repository

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/garyjia/surat-menyurat/internal/application/port"
)

// decodeList parses a JSON list cell. Blank or malformed cells yield an
// empty list so one corrupt cell never hides the whole row.
func decodeList[T any](cell string) []T {
	out := []T{}
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return out
	}
	if err := json.Unmarshal([]byte(cell), &out); err != nil {
		return []T{}
	}
	return out
}

func encodeList[T any](items []T) string {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func parseTime(cell string) time.Time {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, cell); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", cell); err == nil {
		return t
	}
	return time.Time{}
}

func parseTimePtr(cell string) *time.Time {
	t := parseTime(cell)
	if t.IsZero() {
		return nil
	}
	return &t
}

func parseFloatPtr(cell string) *float64 {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func parseInt(cell string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil {
		return fallback
	}
	return n
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// findRowIndex returns the 0-based data row index holding id, or -1.
func findRowIndex(rows []port.Row, id string) int {
	for i, row := range rows {
		if row["id"] != "" && row["id"] == id {
			return i
		}
	}
	return -1
}

// nextNumericID returns one more than the largest numeric id in rows.
// Non-numeric ids are ignored.
func nextNumericID(rows []port.Row) string {
	highest := 0
	for _, row := range rows {
		if n, err := strconv.Atoi(strings.TrimSpace(row["id"])); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}
