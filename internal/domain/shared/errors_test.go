package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("invoice")
	wrapped := fmt.Errorf("failed to load invoice: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrPermissionDenied))

	var domainErr *DomainError
	assert.True(t, errors.As(wrapped, &domainErr))
	assert.Equal(t, "invoice not found", domainErr.Message)
}

func TestNewValidationError_PrefixesField(t *testing.T) {
	err := NewValidationError("amount_paid", "must be positive")
	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, "amount_paid: must be positive", err.Error())
}

func TestFilter_OffsetAndLimit(t *testing.T) {
	f := Filter{Page: 3, PageSize: 10}
	assert.Equal(t, 20, f.Offset())
	assert.Equal(t, 10, f.Limit())

	assert.Equal(t, 0, Filter{}.Offset())
	assert.Equal(t, 20, Filter{}.Limit())
	assert.Equal(t, 100, Filter{PageSize: 500}.Limit())
}

func TestNewPaginated_ComputesTotalPages(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, int64(41), p.Total)
}
