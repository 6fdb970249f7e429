package core

import (
	"errors"
	"testing"
)

func validTransaction() Transaction {
	return Transaction{
		OwnerID:    "user-1",
		Kind:       Expense,
		Category:   "Food",
		Amount:     Money{Cents: 1250},
		OccurredOn: NewDate(2024, 3, 5),
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"empty owner", func(tx *Transaction) { tx.OwnerID = "  " }, ErrEmptyOwner},
		{"unknown kind", func(tx *Transaction) { tx.Kind = "transfer" }, ErrInvalidKind},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.OccurredOn = Date{} }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Errorf("ParseDate() = %v", d)
	}

	if _, err := ParseDate("2024-13-01"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(invalid) = %v, want ErrInvalidDate", err)
	}
	if _, err := ParseDate("not-a-date"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(garbage) = %v, want ErrInvalidDate", err)
	}
}

func TestDate_AddDays(t *testing.T) {
	d := NewDate(2024, 2, 28)
	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Errorf("AddDays(1) = %s, want 2024-02-29 (leap year)", got)
	}
	if got := d.AddDays(-28).String(); got != "2024-01-31" {
		t.Errorf("AddDays(-28) = %s, want 2024-01-31", got)
	}
}
