package dre

// Structural copy helpers. Merge output must never share mutable state
// with the per-account results it was built from, since those results
// live on in an external cache.

// CloneClassMatrix deep-copies a class matrix.
func CloneClassMatrix(m ClassMatrix) ClassMatrix {
	out := make(ClassMatrix, len(m))
	for row, cells := range m {
		copied := make(map[string]float64, len(cells))
		for col, v := range cells {
			copied[col] = v
		}
		out[row] = copied
	}
	return out
}

// CloneDepartmentMatrix deep-copies a department breakdown matrix,
// including every category and supplier node.
func CloneDepartmentMatrix(m DepartmentMatrix) DepartmentMatrix {
	out := make(DepartmentMatrix, len(m))
	for key, node := range m {
		out[key] = cloneDepartmentNode(node)
	}
	return out
}

func cloneDepartmentNode(node *DepartmentNode) *DepartmentNode {
	copied := &DepartmentNode{
		Name:       node.Name,
		Class:      node.Class,
		Categories: make(map[string]*CategoryNode, len(node.Categories)),
	}
	for code, cat := range node.Categories {
		copied.Categories[code] = cloneCategoryNode(cat)
	}
	return copied
}

func cloneCategoryNode(cat *CategoryNode) *CategoryNode {
	copied := &CategoryNode{
		Valores:      clonePeriodValues(cat.Valores),
		Fornecedores: make([]*Supplier, 0, len(cat.Fornecedores)),
	}
	for _, s := range cat.Fornecedores {
		copied.Fornecedores = append(copied.Fornecedores, &Supplier{
			Fornecedor: s.Fornecedor,
			Valores:    clonePeriodValues(s.Valores),
			Total:      s.Total,
		})
	}
	return copied
}

func clonePeriodValues(values map[string]float64) map[string]float64 {
	copied := make(map[string]float64, len(values))
	for period, v := range values {
		copied[period] = v
	}
	return copied
}
