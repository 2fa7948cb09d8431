package cafeadmin

import (
	"fmt"
	"regexp"
	"strings"
)

// Order status closed vocabulary.
const (
	ORDER_STATUS_PENDING     = "pending"
	ORDER_STATUS_IN_PROGRESS = "in_progress"
	ORDER_STATUS_COMPLETED   = "completed"
	ORDER_STATUS_CANCELLED   = "cancelled"
	ORDER_STATUS_READY       = "ready"
	ORDER_STATUS_UNKNOWN     = "unknown"
)

// Menu availability closed vocabulary.
const (
	MENU_STATUS_AVAILABLE    = "available"
	MENU_STATUS_OUT_OF_STOCK = "out_of_stock"
)

var (
	nonLetterRuns = regexp.MustCompile(`[^a-z]+`)
	wordStarts    = regexp.MustCompile(`\b[a-z]`)

	canonicalOrderStatuses = map[string]bool{
		ORDER_STATUS_PENDING:     true,
		ORDER_STATUS_IN_PROGRESS: true,
		ORDER_STATUS_COMPLETED:   true,
		ORDER_STATUS_CANCELLED:   true,
		ORDER_STATUS_READY:       true,
	}
)

// sanitizeStatus lowercases and collapses every run of non-letter
// characters into a single underscore. Idempotent: a sanitized value
// sanitizes to itself.
func sanitizeStatus(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	return nonLetterRuns.ReplaceAllString(normalized, "_")
}

// NormalizeOrderStatus maps any raw status representation into the
// order vocabulary. Total and idempotent: it never fails and
// normalizing an already-normalized value returns it unchanged.
func NormalizeOrderStatus(value interface{}) string {
	if value == nil {
		return ORDER_STATUS_UNKNOWN
	}
	if b, ok := value.(bool); ok && !b {
		return ORDER_STATUS_UNKNOWN
	}

	normalized := strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
	if normalized == "" {
		return ORDER_STATUS_UNKNOWN
	}
	if canonicalOrderStatuses[normalized] {
		return normalized
	}
	switch normalized {
	case "in-progress", "in transit":
		return ORDER_STATUS_IN_PROGRESS
	case "done":
		return ORDER_STATUS_COMPLETED
	case "canceled":
		return ORDER_STATUS_CANCELLED
	}
	if sanitized := nonLetterRuns.ReplaceAllString(normalized, "_"); sanitized != "" {
		return sanitized
	}
	return ORDER_STATUS_UNKNOWN
}

// NormalizeMenuStatus maps any raw availability representation into
// available / out_of_stock. Booleans map directly; some backends
// surface boolean columns as 0/1 integers so numeric values are read
// as booleans too. Absent values default open (available). Total and
// idempotent like NormalizeOrderStatus.
func NormalizeMenuStatus(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return MENU_STATUS_AVAILABLE
	case bool:
		if v {
			return MENU_STATUS_AVAILABLE
		}
		return MENU_STATUS_OUT_OF_STOCK
	case int, int32, int64, float32, float64:
		if numeric, ok := floatFromNumber(v); ok {
			if numeric == 0 {
				return MENU_STATUS_OUT_OF_STOCK
			}
			return MENU_STATUS_AVAILABLE
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(fmt.Sprint(value)))
	if normalized == "" {
		return MENU_STATUS_AVAILABLE
	}
	switch normalized {
	case MENU_STATUS_AVAILABLE, "in_stock", "in-stock":
		return MENU_STATUS_AVAILABLE
	case MENU_STATUS_OUT_OF_STOCK, "sold_out", "unavailable", "out-of-stock":
		return MENU_STATUS_OUT_OF_STOCK
	}
	if sanitized := nonLetterRuns.ReplaceAllString(normalized, "_"); sanitized != "" {
		return sanitized
	}
	return MENU_STATUS_AVAILABLE
}

// ValidOrderStatusFilter reports whether a board filter value is part
// of the closed vocabulary ("all" included).
func ValidOrderStatusFilter(status string) bool {
	return status == "" || status == "all" || canonicalOrderStatuses[status] ||
		status == ORDER_STATUS_UNKNOWN
}

// FormatStatus turns a normalized status into its display label:
// underscores become spaces, each word is capitalized.
func FormatStatus(status string) string {
	spaced := strings.ReplaceAll(status, "_", " ")
	return wordStarts.ReplaceAllStringFunc(spaced, strings.ToUpper)
}

func floatFromNumber(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
