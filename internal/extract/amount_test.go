package extract

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"477,17", 477.17, true},
		{"1.200", 1200, true},
		{"1.234,56", 1234.56, true},
		{"2.500", 2500, true},
		{"50", 50, true},
		{"12.34", 12.34, true},
		{"R$ junk", 0, false},
		{"", 0, false},
		{"3,5", 3.5, true},
		{"1 200", 1200, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParsePhrase(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"dois mil e quinhentos", 2500, true},
		{"três milhões", 3000000, true},
		{"2 mil e 300", 2300, true},
		{"mil", 0, false},
		{"R$ 477,17", 477.17, true},
		{"nada aqui", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePhrase(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParsePhrase(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestScanAmountsNoDoubleCount(t *testing.T) {
	// "2 mil e 300" is a single value; neither the 2 nor the 300 may be
	// reported again on their own.
	got := scanAmounts("uns 2 mil e 300 no total")
	if len(got) != 1 || got[0] != 2300 {
		t.Fatalf("scanAmounts() = %v, want [2300]", got)
	}
}

func TestScanAmountsMultiple(t *testing.T) {
	got := scanAmounts("30 e depois 20,50")
	if len(got) != 2 || got[0] != 30 || got[1] != 20.5 {
		t.Fatalf("scanAmounts() = %v, want [30 20.5]", got)
	}
}
