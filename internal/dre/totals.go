package dre

// ComputeDerivedRows fills the computed DRE lines for the given columns,
// threading the accumulated cash balance through them in order. Columns
// must already be chronological: each column's opening balance is the
// previous column's closing balance, so this chain cannot be reordered.
// It returns the balance after the last column.
func ComputeDerivedRows(m ClassMatrix, columns []string, openingBalance float64) float64 {
	balance := openingBalance
	for _, col := range columns {
		receitaLiquida := m.Value(ClassReceitaBruta, col) + m.Value(ClassDeducoes, col)
		geracaoCaixa := receitaLiquida +
			m.Value(ClassCustos, col) +
			m.Value(ClassDespesas, col) +
			m.Value(ClassIRPJCSLL, col)
		movimentacaoNOp := m.Value(ClassResultadoFinanceiro, col) +
			m.Value(ClassAportesRetiradas, col) +
			m.Value(ClassInvestimentos, col) +
			m.Value(ClassEmprestimos, col)
		movimentacaoMes := geracaoCaixa + movimentacaoNOp

		m.Set(ClassReceitaLiquida, col, receitaLiquida)
		m.Set(ClassGeracaoCaixa, col, geracaoCaixa)
		m.Set(ClassMovimentacaoNOp, col, movimentacaoNOp)
		m.Set(ClassMovimentacaoMes, col, movimentacaoMes)

		m.Set(ClassCaixaInicial, col, balance)
		variacaoTotal := movimentacaoMes +
			m.Value(ClassEntradaTransf, col) +
			m.Value(ClassSaidaTransf, col) +
			m.Value(ClassOutros, col)
		balance += variacaoTotal
		m.Set(ClassCaixaFinal, col, balance)
	}
	return balance
}

// periodVariation is the total cash variation of one column: the monthly
// movement plus transfers and the Outros bucket. It only reads raw rows
// plus the already-derived monthly movement inputs, so it can be applied
// to any single column without running the full chain.
func periodVariation(m ClassMatrix, col string) float64 {
	receitaLiquida := m.Value(ClassReceitaBruta, col) + m.Value(ClassDeducoes, col)
	geracaoCaixa := receitaLiquida +
		m.Value(ClassCustos, col) +
		m.Value(ClassDespesas, col) +
		m.Value(ClassIRPJCSLL, col)
	movimentacaoNOp := m.Value(ClassResultadoFinanceiro, col) +
		m.Value(ClassAportesRetiradas, col) +
		m.Value(ClassInvestimentos, col) +
		m.Value(ClassEmprestimos, col)
	return geracaoCaixa + movimentacaoNOp +
		m.Value(ClassEntradaTransf, col) +
		m.Value(ClassSaidaTransf, col) +
		m.Value(ClassOutros, col)
}
