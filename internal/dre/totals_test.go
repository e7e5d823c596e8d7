package dre

import "testing"

func TestComputeDerivedRowsChain(t *testing.T) {
	m := make(ClassMatrix)
	m.Set(ClassReceitaBruta, "01-2024", 1000)
	m.Set(ClassDeducoes, "01-2024", -100)
	m.Set(ClassCustos, "01-2024", -300)
	m.Set(ClassDespesas, "01-2024", -200)
	m.Set(ClassIRPJCSLL, "01-2024", -50)
	m.Set(ClassResultadoFinanceiro, "01-2024", 20)
	m.Set(ClassInvestimentos, "01-2024", -70)
	m.Set(ClassOutros, "01-2024", 5)
	m.Set(ClassReceitaBruta, "02-2024", 400)

	final := ComputeDerivedRows(m, []string{"01-2024", "02-2024"}, 100)

	if got := m.Value(ClassReceitaLiquida, "01-2024"); !almostEqual(got, 900) {
		t.Fatalf("receita líquida: got %v", got)
	}
	if got := m.Value(ClassGeracaoCaixa, "01-2024"); !almostEqual(got, 350) {
		t.Fatalf("geração de caixa: got %v", got)
	}
	if got := m.Value(ClassMovimentacaoNOp, "01-2024"); !almostEqual(got, -50) {
		t.Fatalf("movimentação não operacional: got %v", got)
	}
	if got := m.Value(ClassMovimentacaoMes, "01-2024"); !almostEqual(got, 300) {
		t.Fatalf("movimentação mensal: got %v", got)
	}
	if got := m.Value(ClassCaixaInicial, "01-2024"); !almostEqual(got, 100) {
		t.Fatalf("caixa inicial: got %v", got)
	}
	// variação total = 300 + 5 (Outros)
	if got := m.Value(ClassCaixaFinal, "01-2024"); !almostEqual(got, 405) {
		t.Fatalf("caixa final: got %v", got)
	}
	if got := m.Value(ClassCaixaInicial, "02-2024"); !almostEqual(got, 405) {
		t.Fatalf("caixa inicial of next column must equal previous caixa final, got %v", got)
	}
	if got := m.Value(ClassCaixaFinal, "02-2024"); !almostEqual(got, 805) {
		t.Fatalf("caixa final 02-2024: got %v", got)
	}
	if !almostEqual(final, 805) {
		t.Fatalf("returned balance %v != last caixa final", final)
	}
}

func TestComputeDerivedRowsIsDeterministic(t *testing.T) {
	build := func() ClassMatrix {
		m := make(ClassMatrix)
		m.Set(ClassReceitaBruta, "03-2024", 150)
		m.Set(ClassCustos, "03-2024", -40)
		m.Set(ClassEntradaTransf, "04-2024", 60)
		m.Set(ClassSaidaTransf, "04-2024", -10)
		return m
	}
	columns := []string{"03-2024", "04-2024"}

	first := build()
	second := build()
	a := ComputeDerivedRows(first, columns, 42)
	b := ComputeDerivedRows(second, columns, 42)
	if !almostEqual(a, b) {
		t.Fatalf("non-deterministic final balance: %v vs %v", a, b)
	}
	for _, col := range columns {
		for _, row := range []string{ClassCaixaInicial, ClassCaixaFinal, ClassMovimentacaoMes} {
			if !almostEqual(first.Value(row, col), second.Value(row, col)) {
				t.Fatalf("row %s col %s differs", row, col)
			}
		}
	}
}

func TestComputeDerivedRowsMissingRowsDefaultToZero(t *testing.T) {
	m := make(ClassMatrix)
	final := ComputeDerivedRows(m, []string{"01-2024"}, 10)
	if !almostEqual(final, 10) {
		t.Fatalf("expected balance unchanged, got %v", final)
	}
	if got := m.Value(ClassCaixaInicial, "01-2024"); !almostEqual(got, 10) {
		t.Fatalf("caixa inicial: got %v", got)
	}
	if got := m.Value(ClassCaixaFinal, "01-2024"); !almostEqual(got, 10) {
		t.Fatalf("caixa final: got %v", got)
	}
}
