package dre

import "sort"

// AggregateEntries folds the entries belonging to one account into a
// period-keyed class matrix and, for detailable classes, the
// department/category/supplier breakdown matrix. Amounts are negated for
// payment-nature entries. Inputs are never mutated; every structure in
// the result is freshly allocated.
func AggregateEntries(entries []Entry, refs Refs, account string) AccountResult {
	result := AccountResult{
		Classes:     make(ClassMatrix),
		Departments: make(DepartmentMatrix),
		Periods:     make(map[string]struct{}),
	}

	for _, entry := range entries {
		if entry.Account != account {
			continue
		}
		if entry.Date.Year == 0 {
			continue
		}
		period := MonthKey(entry.Date)
		value := signedValue(entry.Nature, entry.Amount)
		class := refs.ClassForCategory(entry.Category)

		result.Classes.Add(class, period, value)
		result.Periods[period] = struct{}{}

		if !Detailable(class) || len(entry.Split) == 0 {
			continue
		}
		for _, share := range entry.Split {
			shareValue := signedValue(entry.Nature, share.Value)
			deptName := refs.DepartmentName(share.Department)
			node := deptNode(result.Departments, deptName, class)
			cat := categoryNode(node, entry.Category)
			cat.Valores[period] += shareValue
			supplier := supplierNode(cat, entry.Client)
			supplier.Valores[period] += shareValue
			supplier.Total += shareValue
		}
	}

	sortSuppliers(result.Departments)
	return result
}

func signedValue(nature string, amount float64) float64 {
	if nature == NaturePayment {
		return -amount
	}
	return amount
}

func deptNode(m DepartmentMatrix, department, class string) *DepartmentNode {
	key := DepartmentKey(department, class)
	node, ok := m[key]
	if !ok {
		node = &DepartmentNode{
			Name:       department,
			Class:      class,
			Categories: make(map[string]*CategoryNode),
		}
		m[key] = node
	}
	return node
}

func categoryNode(node *DepartmentNode, category string) *CategoryNode {
	cat, ok := node.Categories[category]
	if !ok {
		cat = &CategoryNode{Valores: make(map[string]float64)}
		node.Categories[category] = cat
	}
	return cat
}

func supplierNode(cat *CategoryNode, name string) *Supplier {
	for _, s := range cat.Fornecedores {
		if s.Fornecedor == name {
			return s
		}
	}
	s := &Supplier{Fornecedor: name, Valores: make(map[string]float64)}
	cat.Fornecedores = append(cat.Fornecedores, s)
	return s
}

// sortSuppliers orders every category's supplier list descending by
// total, ties broken by name for stable output.
func sortSuppliers(m DepartmentMatrix) {
	for _, node := range m {
		for _, cat := range node.Categories {
			list := cat.Fornecedores
			sort.Slice(list, func(i, j int) bool {
				if list[i].Total != list[j].Total {
					return list[i].Total > list[j].Total
				}
				return list[i].Fornecedor < list[j].Fornecedor
			})
		}
	}
}
