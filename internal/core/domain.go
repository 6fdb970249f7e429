package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind distinguishes money coming in from money going out.
	Kind string

	// Date is a calendar day. The wrapped time is always UTC midnight;
	// time-of-day never carries meaning.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Transaction is one recorded financial event. ID is assigned by the
	// store; OwnerID is immutable after creation.
	Transaction struct {
		ID         int64
		OwnerID    string
		Kind       Kind
		Category   string
		Amount     Money
		OccurredOn Date
		Notes      string
	}
)

var (
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrEmptyOwner      = errors.New("empty owner id")
	ErrEmptyCategory   = errors.New("empty category")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
	ErrNotesTooLong    = errors.New("notes too long (max 500 characters)")
)

// IsValid reports whether k is one of the two known kinds.
func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// String formats the date as ISO 2006-01-02.
func (d Date) String() string {
	return d.Time.Format("2006-01-02")
}

// MarshalJSON emits the date as an ISO calendar string, not a timestamp.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the transaction invariants: positive amount, known kind,
// valid calendar date, non-empty owner and category.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Category) > 100 {
		return ErrCategoryTooLong
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.OccurredOn.Validate(); err != nil {
		return err
	}
	if len(t.Notes) > 500 {
		return ErrNotesTooLong
	}
	return nil
}
