package extract

import "testing"

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		verb     string
		wantCat  string
		wantConf float64
	}{
		{
			name:     "food keyword",
			text:     "mercado",
			verb:     "gastei",
			wantCat:  CategoryFood,
			wantConf: 0.95,
		},
		{
			name:     "transport keyword",
			text:     "uber",
			verb:     "paguei",
			wantCat:  CategoryTransport,
			wantConf: 0.95,
		},
		{
			name:     "salary keyword with accent",
			text:     "salário",
			verb:     "recebi",
			wantCat:  CategorySalary,
			wantConf: 0.95,
		},
		{
			name:     "sale verb overrides apparel keyword",
			text:     "vendi uma calça",
			verb:     "",
			wantCat:  CategorySales,
			wantConf: 0.8,
		},
		{
			name:     "sale verb hint without sale word in text",
			text:     "uma calça usada",
			verb:     "vendi",
			wantCat:  CategorySales,
			wantConf: 0.8,
		},
		{
			name:     "bare pix stays vague",
			text:     "pix",
			verb:     "recebi",
			wantCat:  CategoryOther,
			wantConf: 0.4,
		},
		{
			name:     "electronic signature over pix is not a service",
			text:     "assinatura eletrônica via pix",
			verb:     "",
			wantCat:  CategoryOther,
			wantConf: 0.4,
		},
		{
			name:     "transfer with concrete merchant keeps keyword",
			text:     "transferência para o mercado",
			verb:     "",
			wantCat:  CategoryFood,
			wantConf: 0.95,
		},
		{
			name:     "verb default for paguei",
			text:     "xyz",
			verb:     "paguei",
			wantCat:  CategoryServices,
			wantConf: 0.3,
		},
		{
			name:     "verb default for gastei",
			text:     "",
			verb:     "gastei",
			wantCat:  CategoryOther,
			wantConf: 0.3,
		},
		{
			name:     "nothing matches",
			text:     "qualquer coisa",
			verb:     "",
			wantCat:  CategoryOther,
			wantConf: 0.2,
		},
		{
			name:     "holerite counts as salary",
			text:     "caiu o holerite",
			verb:     "",
			wantCat:  CategorySalary,
			wantConf: 0.95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, conf := DetectCategory(tt.text, tt.verb)
			if cat != tt.wantCat || conf != tt.wantConf {
				t.Errorf("DetectCategory(%q, %q) = %q, %v, want %q, %v",
					tt.text, tt.verb, cat, conf, tt.wantCat, tt.wantConf)
			}
		})
	}
}

func TestIsKnownCategory(t *testing.T) {
	for _, c := range CategoryList {
		if !IsKnownCategory(c) {
			t.Errorf("IsKnownCategory(%q) = false", c)
		}
	}
	if IsKnownCategory("comida") {
		t.Error(`IsKnownCategory("comida") = true, want false`)
	}
}
