package extract

import "testing"

func TestNaturalize(t *testing.T) {
	tests := []struct {
		name     string
		dir      Direction
		category string
		desc     string
		want     string
	}{
		{
			name:     "expense canonical merchant",
			dir:      Expense,
			category: CategoryFood,
			desc:     "gastei 50 no mercado",
			want:     "Mercado",
		},
		{
			name:     "income salary",
			dir:      Income,
			category: CategorySalary,
			desc:     "recebi 1000 de salário",
			want:     "Salário",
		},
		{
			name:     "income transfer keeps source preposition",
			dir:      Income,
			category: CategoryOther,
			desc:     "recebi uma transferência de 500 da minha prima",
			want:     "Transferência da prima",
		},
		{
			name:     "sale drops article and price",
			dir:      Income,
			category: CategorySales,
			desc:     "vendi uma calça por 50",
			want:     "Venda de calça",
		},
		{
			name:     "sale strips article before accented word",
			dir:      Income,
			category: CategorySales,
			desc:     "vendi o armário antigo por 200",
			want:     "Venda de armário antigo",
		},
		{
			name:     "outgoing transfer",
			dir:      Expense,
			category: CategoryOther,
			desc:     "transferi 200 para minha mãe",
			want:     "Transferência para mãe",
		},
		{
			name:     "generic expense verb",
			dir:      Expense,
			category: CategoryOther,
			desc:     "gastei 80 com aquilo",
			want:     "Gastos com aquilo",
		},
		{
			name:     "freela",
			dir:      Income,
			category: CategorySalary,
			desc:     "ganhei 100 de freela",
			want:     "Freela",
		},
		{
			name:     "empty expense",
			dir:      Expense,
			category: CategoryOther,
			desc:     "",
			want:     "Despesa",
		},
		{
			name:     "empty salary income",
			dir:      Income,
			category: CategorySalary,
			desc:     "",
			want:     "Salário",
		},
		{
			name:     "empty generic income",
			dir:      Income,
			category: CategoryOther,
			desc:     "",
			want:     "Receita",
		},
		{
			name:     "pix income",
			dir:      Income,
			category: CategoryOther,
			desc:     "caiu um pix de 75",
			want:     "Pix recebido",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Naturalize(tt.dir, tt.category, tt.desc)
			if got != tt.want {
				t.Errorf("Naturalize(%v, %q, %q) = %q, want %q",
					tt.dir, tt.category, tt.desc, got, tt.want)
			}
		})
	}
}

func TestTidyPhrase(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"de da prima", "da prima"},
		{"entrada de paraíso", "entrada de paraíso"},
		{"mercado de", "mercado"},
		{"  show   de rock  ", "show de rock"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := tidyPhrase(tt.input); got != tt.want {
				t.Errorf("tidyPhrase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNaturalScore(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Gastos com mercado", 2},
		{"Receita de vendas", 2},
		{"Despesa", 2},
		{"Salário", 2},
		{"Mercado", 1},
		{"Transferência da prima", 1},
		{"", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NaturalScore(tt.input); got != tt.want {
				t.Errorf("NaturalScore(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
