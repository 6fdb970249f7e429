package google

import "testing"

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		name string
		base string
		year int
		want string
	}{
		{"plain base gets prefixed", "Transactions", 2024, "2024 Transactions"},
		{"already prefixed base is kept", "2023 Transactions", 2024, "2023 Transactions"},
		{"empty base stays empty", "", 2024, ""},
		{"whitespace is trimmed", "  Transactions ", 2024, "2024 Transactions"},
		{"short numeric base gets prefixed", "1234", 2024, "2024 1234"},
		{"implausible year is treated as a name", "1111 Ledger", 2024, "2024 1111 Ledger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
				t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
			}
		})
	}
}
