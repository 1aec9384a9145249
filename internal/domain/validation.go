package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxDescriptionLength = 1000
	MaxAmount            = "1000000000000" // 1 trillion
	MoneyScale           = 2
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinAccountNameLength {
		return NewValidationError("name", "name cannot be empty")
	}
	if len(name) > MaxAccountNameLength {
		return NewValidationError("name", fmt.Sprintf("name exceeds %d characters", MaxAccountNameLength))
	}
	return nil
}

// ValidateAmount checks that amount is positive, within range and has at most
// two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("amount", "amount must be positive")
	}
	if amount.GreaterThan(maxAmount) {
		return NewValidationError("amount", "maximum amount is "+MaxAmount)
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return NewValidationError("amount", fmt.Sprintf("amount has more than %d decimal places", MoneyScale))
	}
	return nil
}

// ValidateDescription validates free text length
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return NewValidationError("description", fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	}
	return nil
}

// ValidateDateRange checks an inclusive date window.
func ValidateDateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return NewValidationError("date_from", "date window is required")
	}
	if DateOnly(from).After(DateOnly(to)) {
		return NewValidationError("date_to", "date_to must not be before date_from")
	}
	return nil
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// InDateRange reports whether t falls inside the inclusive window.
func InDateRange(t, from, to time.Time) bool {
	day := DateOnly(t)
	return !day.Before(DateOnly(from)) && !day.After(DateOnly(to))
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
