package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Clock returns the current time
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// ExpenseInput is the raw expense form as submitted by the user
type ExpenseInput struct {
	Amount      string
	Description string
	Category    string
	Date        string
}

// ExpenseValidator checks submitted expense forms
type ExpenseValidator struct {
	strictCategories bool
	clock            Clock
}

// NewExpenseValidator creates a new ExpenseValidator. With strictCategories
// only the fixed category set is accepted.
func NewExpenseValidator(strictCategories bool, clock Clock) *ExpenseValidator {
	return &ExpenseValidator{strictCategories: strictCategories, clock: clock}
}

// Validate parses and validates an expense form. All failing fields are
// reported together in a *domain.ValidationError.
func (v *ExpenseValidator) Validate(input ExpenseInput) (*domain.NewExpense, error) {
	verr := &domain.ValidationError{}
	result := &domain.NewExpense{}

	// Amount
	rawAmount := strings.TrimSpace(input.Amount)
	if rawAmount == "" {
		verr.Add("amount", "Amount is required")
	} else if amount, err := decimal.NewFromString(rawAmount); err != nil {
		verr.Add("amount", "Please enter a valid number")
	} else if !amount.IsPositive() {
		verr.Add("amount", "Amount must be greater than 0")
	} else if amount.GreaterThan(domain.MaxExpenseAmount) {
		verr.Add("amount", "Amount cannot exceed $1,000,000")
	} else {
		result.Amount = amount
	}

	// Category
	category := domain.Category(strings.TrimSpace(input.Category))
	if category == "" {
		verr.Add("category", "Category is required")
	} else if v.strictCategories && !category.IsKnown() {
		verr.Add("category", "Category must be one of: "+categoryList())
	} else {
		result.Category = category
	}

	// Description
	description := strings.TrimSpace(input.Description)
	length := utf8.RuneCountInString(description)
	switch {
	case length == 0:
		verr.Add("description", "Description is required")
	case length < domain.MinDescriptionLength:
		verr.Add("description", "Description must be at least 3 characters long")
	case length > domain.MaxDescriptionLength:
		verr.Add("description", "Description cannot exceed 200 characters")
	default:
		result.Description = description
	}

	// Date is optional and defaults to the creation time
	if rawDate := strings.TrimSpace(input.Date); rawDate != "" {
		now := v.clock.now()
		date, ok := parseDate(rawDate, now.Location())
		if !ok {
			verr.Add("date", "Please enter a valid date")
		} else if util.IsFutureDay(date, now) {
			verr.Add("date", "Date cannot be in the future")
		} else {
			result.Date = &date
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return result, nil
}

// ValidateLogin checks the login form
func ValidateLogin(username, password string) error {
	verr := &domain.ValidationError{}

	username = strings.TrimSpace(username)
	if username == "" {
		verr.Add("username", "Username is required")
	} else if utf8.RuneCountInString(username) < domain.MinUsernameLength {
		verr.Add("username", "Username must be at least 3 characters long")
	}

	if password == "" {
		verr.Add("password", "Password is required")
	} else if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		verr.Add("password", "Password must be at least 6 characters long")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// ValidateBudget checks a budget amount
func ValidateBudget(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return domain.NewValidationError("amount", "Budget must be zero or positive")
	}
	return nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func categoryList() string {
	names := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
