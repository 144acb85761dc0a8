package persistence

import (
	"strings"

	"github.com/gridledger/billing/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns the fallback if the input is empty or invalid.
func ValidateSortOrder(orderDir, fallback string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return fallback
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// sortSpec is the whitelist and default ordering of one listing
type sortSpec struct {
	fields       map[string]bool
	defaultField string
	defaultDir   string
}

// order applies the requested ordering, falling back to the listing's default.
// id breaks ties so pages are stable.
func (s sortSpec) order(query *gorm.DB, filter shared.Filter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, s.fields, s.defaultField)
	dir := s.defaultDir
	if filter.OrderBy != "" {
		dir = ValidateSortOrder(filter.OrderDir, s.defaultDir)
	}
	return query.Order(field + " " + dir).Order("id " + dir)
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var (
	clientSort = sortSpec{
		fields:       map[string]bool{"name": true, "client_number": true, "email": true, "created_at": true},
		defaultField: "name",
		defaultDir:   "ASC",
	}
	contractSort = sortSpec{
		fields:       map[string]bool{"start_date": true, "end_date": true, "contract_number": true, "status": true, "created_at": true},
		defaultField: "start_date",
		defaultDir:   "DESC",
	}
	tariffSort = sortSpec{
		fields:       map[string]bool{"effective_date": true, "price_per_kwh": true, "season": true, "client_class": true, "created_at": true},
		defaultField: "effective_date",
		defaultDir:   "DESC",
	}
	meterSort = sortSpec{
		fields:       map[string]bool{"installed_on": true, "meter_number": true, "status": true, "created_at": true},
		defaultField: "installed_on",
		defaultDir:   "DESC",
	}
	readingSort = sortSpec{
		fields:       map[string]bool{"reading_date": true, "consumption_kwh": true, "current_value": true, "created_at": true},
		defaultField: "reading_date",
		defaultDir:   "DESC",
	}
	invoiceSort = sortSpec{
		fields:       map[string]bool{"issue_date": true, "due_date": true, "total_amount": true, "status": true, "created_at": true},
		defaultField: "issue_date",
		defaultDir:   "DESC",
	}
	paymentSort = sortSpec{
		fields:       map[string]bool{"payment_date": true, "amount_paid": true, "method": true, "created_at": true},
		defaultField: "payment_date",
		defaultDir:   "DESC",
	}
	userSort = sortSpec{
		fields:       map[string]bool{"username": true, "role": true, "created_at": true},
		defaultField: "username",
		defaultDir:   "ASC",
	}
	notificationSort = sortSpec{
		fields:       map[string]bool{"created_at": true},
		defaultField: "created_at",
		defaultDir:   "DESC",
	}
)
