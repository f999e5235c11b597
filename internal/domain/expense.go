package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the name of an expense category
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryUtilities      Category = "Utilities"
	CategoryShopping       Category = "Shopping"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryOther          Category = "Other"

	// CategoryUncategorized is assigned when a record carries no category
	CategoryUncategorized Category = "Uncategorized"
)

// Categories lists the fixed category set offered to users
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryShopping,
	CategoryHealthcare,
	CategoryEducation,
	CategoryOther,
}

// IsKnown reports whether c belongs to the fixed category set
func (c Category) IsKnown() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a single recorded spending transaction
type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Date        *time.Time      `json:"date,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// AttributionDate is the date used to place the expense in a month:
// Date when set, CreatedAt otherwise.
func (e *Expense) AttributionDate() time.Time {
	if e.Date != nil && !e.Date.IsZero() {
		return *e.Date
	}
	return e.CreatedAt
}

// Clone returns a deep copy of the expense
func (e *Expense) Clone() *Expense {
	c := *e
	if e.Date != nil {
		d := *e.Date
		c.Date = &d
	}
	return &c
}

// NewExpense is the user-submitted part of an expense, before id and createdAt exist
type NewExpense struct {
	Amount      decimal.Decimal
	Description string
	Category    Category
	Date        *time.Time
}

// expenseJSON mirrors Expense with a loosely typed amount and date.
// Remote services return numbers, numeric strings or nothing at all.
type expenseJSON struct {
	ID          json.RawMessage `json:"id"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Date        *string         `json:"date"`
	CreatedAt   *string         `json:"createdAt"`
}

// UnmarshalJSON decodes an expense leniently. A missing or non-numeric
// amount decodes as zero, and an unparseable date is treated as absent.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = rawToString(raw.ID)
	e.Amount = ParseAmount(raw.Amount)
	e.Description = raw.Description
	e.Category = raw.Category
	e.Date = nil
	e.CreatedAt = time.Time{}

	if raw.Date != nil {
		if t, ok := parseTimestamp(*raw.Date); ok {
			e.Date = &t
		}
	}
	if raw.CreatedAt != nil {
		if t, ok := parseTimestamp(*raw.CreatedAt); ok {
			e.CreatedAt = t
		}
	}
	return nil
}

// ParseAmount converts a JSON number, numeric string or null into a decimal.
// Anything unparseable becomes zero.
func ParseAmount(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
	} else {
		s = string(raw)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func rawToString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	return string(raw)
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
