package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"0.01", 1, false},
		{"7", 700, false},
		{"", 0, true},
		{"-5", 0, true},
		{"0", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	if got := (Money{Cents: 1234}).String(); got != "€12,34" {
		t.Errorf("String() = %s, want €12,34", got)
	}
	if got := (Money{Cents: -5}).String(); got != "-€0,05" {
		t.Errorf("String() = %s, want -€0,05", got)
	}
}
