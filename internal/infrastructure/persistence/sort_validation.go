package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort direction to ASC or DESC (the default)
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, defaultField otherwise
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BookingSortFields contains allowed sort fields for bookings
var BookingSortFields = map[string]bool{
	"created_at":           true,
	"updated_at":           true,
	"booking_number":       true,
	"customer_name":        true,
	"property_name":        true,
	"status":               true,
	"start_date":           true,
	"total_property_value": true,
}

// PaymentRecordSortFields contains allowed sort fields for payment records
var PaymentRecordSortFields = map[string]bool{
	"created_at":         true,
	"payment_date":       true,
	"amount":             true,
	"installment_number": true,
	"booking_number":     true,
}
