package docscan

import (
	"testing"

	"github.com/rbarros/finassist/internal/extract"
)

const sampleStatement = `EXTRATO DE CONTA CORRENTE
Período 01/03/2025 a 31/03/2025
Agência 0001 Conta 12345-6

05/03 COMPRA CARTAO SUPERMERCADO BOM PRECO 152,30
07/03 PIX RECEBIDO MARIA SILVA 1.200,00
12/03 PAGAMENTO BOLETO ALUGUEL 950,00
15/03 TARIFA PACOTE SERVICOS 24,90
SALDO FINAL 1.072,80
Página 1 de 1`

func TestScanText(t *testing.T) {
	got := ScanText(sampleStatement)
	if len(got) != 4 {
		t.Fatalf("ScanText() returned %d candidates, want 4: %+v", len(got), got)
	}

	checks := []struct {
		dir extract.Direction
		amt float64
		cat string
	}{
		{extract.Expense, 152.30, extract.CategoryFood},
		{extract.Income, 1200, extract.CategoryOther},
		{extract.Expense, 950, extract.CategoryHousing},
		{extract.Expense, 24.90, extract.CategoryServices},
	}
	for i, want := range checks {
		c := got[i]
		if c.Direction != want.dir || c.Amount != want.amt || c.Category != want.cat {
			t.Errorf("candidate[%d] = %+v, want %v %v %q", i, c, want.dir, want.amt, want.cat)
		}
		if !c.NeedsConfirmation {
			t.Errorf("candidate[%d].NeedsConfirmation = false, want true for document candidates", i)
		}
	}
}

func TestScanTextSkipsHeadersAndBalances(t *testing.T) {
	got := ScanText("SALDO ANTERIOR 10.000,00\nPágina 2 de 3\nwww.banco.example 1,00")
	if len(got) != 0 {
		t.Errorf("ScanText() = %+v, want none from header lines", got)
	}
}

func TestScanTextInheritsDescription(t *testing.T) {
	text := "10/03 COMPRA FARMACIA SAO JOSE\n37,50"
	got := ScanText(text)
	if len(got) != 1 {
		t.Fatalf("ScanText() returned %d candidates, want 1: %+v", len(got), got)
	}
	if got[0].Category != extract.CategoryHealth {
		t.Errorf("category = %q, want %q from the carried-over description", got[0].Category, extract.CategoryHealth)
	}
}

func TestScanTextIgnoresAmountsWithoutCents(t *testing.T) {
	got := ScanText("05/03 DOCUMENTO 123456 COMPRA LOJA 89,90")
	if len(got) != 1 {
		t.Fatalf("ScanText() returned %d candidates, want 1: %+v", len(got), got)
	}
	if got[0].Amount != 89.90 {
		t.Errorf("amount = %v, want 89.9 (document number must not parse)", got[0].Amount)
	}
}

func TestScanTextNoise(t *testing.T) {
	if got := ScanText(""); len(got) != 0 {
		t.Errorf("ScanText(\"\") = %+v, want none", got)
	}
	if got := ScanText("linha sem valores"); len(got) != 0 {
		t.Errorf("ScanText() = %+v, want none for text without amounts", got)
	}
}
