package dre

// MergeAccountResults combines per-account aggregation results into the
// display-ready DRE. It sums class matrices cell-wise, deep-merges the
// department breakdown, carries historical cash movement into the
// opening balance of the visible window, optionally rolls monthly
// columns up into years, and finalizes the derived rows plus the TOTAL
// column. An empty input yields a well-formed zero report.
func MergeAccountResults(results []AccountResult, mode string, visibleColumns []string) Report {
	combined := CombineAccountResults(results)
	merged := Report{
		Classes:        combined.Classes,
		Departments:    combined.Departments,
		OpeningBalance: combined.OpeningBalance,
	}
	periods := combined.Periods

	// Accounts may hold ledger history outside the visible filter range.
	// The opening balance of the window must reflect all activity before
	// its first column, not only the summed account opening balances.
	merged.OpeningBalance += carriedVariation(merged.Classes, periods, visibleColumns)

	if mode == ModeAnnual {
		merged.Classes = rollupClasses(merged.Classes)
		merged.Departments = rollupDepartments(merged.Departments)
	}

	finalize(merged.Classes, visibleColumns, merged.OpeningBalance)
	return merged
}

// CombineAccountResults performs the raw merge of aggregation results:
// cell-wise class sums, deep department merge, opening-balance sum, and
// period-set union. The cell-wise sum is associative and commutative, so
// results may be combined in any grouping.
func CombineAccountResults(results []AccountResult) AccountResult {
	combined := AccountResult{
		Classes:     make(ClassMatrix),
		Departments: make(DepartmentMatrix),
		Periods:     make(map[string]struct{}),
	}
	for _, res := range results {
		for row, cells := range res.Classes {
			for col, v := range cells {
				combined.Classes.Add(row, col, v)
			}
		}
		mergeDepartments(combined.Departments, res.Departments)
		combined.OpeningBalance += res.OpeningBalance
		for p := range res.Periods {
			combined.Periods[p] = struct{}{}
		}
	}
	sortSuppliers(combined.Departments)
	return combined
}

// carriedVariation sums the cash variation of every historical period
// strictly before the first visible column. The per-period variation is
// the same quantity the derived-row chain accumulates into the running
// balance, so seeding the visible window with this sum is equivalent to
// replaying the chain over the full history from a zero base.
func carriedVariation(m ClassMatrix, periods map[string]struct{}, visibleColumns []string) float64 {
	if len(visibleColumns) == 0 {
		return 0
	}
	first := chronoFirst(visibleColumns)
	var sum float64
	for _, p := range periodSetKeys(periods) {
		if !PeriodBefore(p, first) {
			break
		}
		sum += periodVariation(m, p)
	}
	return sum
}

func chronoFirst(columns []string) string {
	first := columns[0]
	for _, col := range columns[1:] {
		if PeriodBefore(col, first) {
			first = col
		}
	}
	return first
}

// mergeDepartments accumulates src into dst, never aliasing src nodes:
// cached per-account results must stay untouched by later merges.
func mergeDepartments(dst, src DepartmentMatrix) {
	for key, node := range src {
		target, ok := dst[key]
		if !ok {
			target = &DepartmentNode{
				Name:       node.Name,
				Class:      node.Class,
				Categories: make(map[string]*CategoryNode),
			}
			dst[key] = target
		}
		for code, cat := range node.Categories {
			targetCat, ok := target.Categories[code]
			if !ok {
				targetCat = &CategoryNode{Valores: make(map[string]float64)}
				target.Categories[code] = targetCat
			}
			for period, v := range cat.Valores {
				targetCat.Valores[period] += v
			}
			for _, s := range cat.Fornecedores {
				targetSupplier := supplierNode(targetCat, s.Fornecedor)
				for period, v := range s.Valores {
					targetSupplier.Valores[period] += v
				}
				targetSupplier.Total += s.Total
			}
		}
	}
}

// rollupClasses re-keys monthly columns into years, summing columns that
// land in the same year.
func rollupClasses(m ClassMatrix) ClassMatrix {
	out := make(ClassMatrix, len(m))
	for row, cells := range m {
		for col, v := range cells {
			out.Add(row, YearKey(col), v)
		}
	}
	return out
}

// rollupDepartments re-keys the breakdown matrix into annual columns.
// Supplier totals are period-independent and carry over unchanged, so
// the descending order of supplier lists is preserved.
func rollupDepartments(m DepartmentMatrix) DepartmentMatrix {
	out := make(DepartmentMatrix, len(m))
	for key, node := range m {
		rolled := &DepartmentNode{
			Name:       node.Name,
			Class:      node.Class,
			Categories: make(map[string]*CategoryNode, len(node.Categories)),
		}
		for code, cat := range node.Categories {
			rolledCat := &CategoryNode{
				Valores:      rollupPeriodValues(cat.Valores),
				Fornecedores: make([]*Supplier, 0, len(cat.Fornecedores)),
			}
			for _, s := range cat.Fornecedores {
				rolledCat.Fornecedores = append(rolledCat.Fornecedores, &Supplier{
					Fornecedor: s.Fornecedor,
					Valores:    rollupPeriodValues(s.Valores),
					Total:      s.Total,
				})
			}
			rolled.Categories[code] = rolledCat
		}
		out[key] = rolled
	}
	return out
}

func rollupPeriodValues(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	for period, v := range values {
		out[YearKey(period)] += v
	}
	return out
}

// finalize runs the derived-row chain over the visible columns and fills
// the TOTAL column. Running balances are not summable across periods, so
// Caixa Inicial's TOTAL is its first visible column and Caixa Final's is
// its last.
func finalize(m ClassMatrix, visibleColumns []string, openingBalance float64) {
	if len(visibleColumns) == 0 {
		return
	}
	ordered := SortPeriods(append([]string(nil), visibleColumns...))
	ComputeDerivedRows(m, ordered, openingBalance)

	first := ordered[0]
	last := ordered[len(ordered)-1]
	for row := range m {
		switch row {
		case ClassCaixaInicial:
			m.Set(row, TotalColumn, m.Value(row, first))
		case ClassCaixaFinal:
			m.Set(row, TotalColumn, m.Value(row, last))
		default:
			var total float64
			for _, col := range ordered {
				total += m.Value(row, col)
			}
			m.Set(row, TotalColumn, total)
		}
	}
}
