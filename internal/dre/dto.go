package dre

import "sort"

// Wire/storage schema for cached aggregation results. Keyed maps do not
// round-trip through JSON in a stable way, so the cache boundary uses an
// explicit array-of-rows form instead of the in-memory model.

// PeriodValueDTO is one (period, amount) cell.
type PeriodValueDTO struct {
	Period string  `json:"periodo"`
	Value  float64 `json:"valor"`
}

// ClassRowDTO is one DRE line with its period cells.
type ClassRowDTO struct {
	Class  string           `json:"classe"`
	Values []PeriodValueDTO `json:"valores"`
}

// SupplierDTO mirrors Supplier in wire form.
type SupplierDTO struct {
	Fornecedor string           `json:"fornecedor"`
	Values     []PeriodValueDTO `json:"valores"`
	Total      float64          `json:"total"`
}

// CategoryDTO mirrors CategoryNode in wire form.
type CategoryDTO struct {
	Category     string           `json:"categoria"`
	Values       []PeriodValueDTO `json:"valores"`
	Fornecedores []SupplierDTO    `json:"fornecedores"`
}

// DepartmentDTO mirrors DepartmentNode in wire form.
type DepartmentDTO struct {
	Name       string        `json:"nome"`
	Class      string        `json:"classe"`
	Categories []CategoryDTO `json:"categorias"`
}

// AccountResultDTO is the persisted form of a per-account aggregation.
type AccountResultDTO struct {
	Classes        []ClassRowDTO   `json:"classes"`
	Departments    []DepartmentDTO `json:"departamentos"`
	Periods        []string        `json:"periodos"`
	OpeningBalance float64         `json:"saldoInicial"`
}

// ToDTO converts an aggregation result to its wire form. Rows, columns,
// and categories are emitted in deterministic order so equal results
// serialize to equal payloads.
func ToDTO(res AccountResult) AccountResultDTO {
	dto := AccountResultDTO{
		Classes:        make([]ClassRowDTO, 0, len(res.Classes)),
		Departments:    make([]DepartmentDTO, 0, len(res.Departments)),
		Periods:        periodSetKeys(res.Periods),
		OpeningBalance: res.OpeningBalance,
	}

	classRows := make([]string, 0, len(res.Classes))
	for row := range res.Classes {
		classRows = append(classRows, row)
	}
	sort.Strings(classRows)
	for _, row := range classRows {
		dto.Classes = append(dto.Classes, ClassRowDTO{
			Class:  row,
			Values: periodValuesToDTO(res.Classes[row]),
		})
	}

	deptKeys := make([]string, 0, len(res.Departments))
	for key := range res.Departments {
		deptKeys = append(deptKeys, key)
	}
	sort.Strings(deptKeys)
	for _, key := range deptKeys {
		node := res.Departments[key]
		deptDTO := DepartmentDTO{Name: node.Name, Class: node.Class}
		catCodes := make([]string, 0, len(node.Categories))
		for code := range node.Categories {
			catCodes = append(catCodes, code)
		}
		sort.Strings(catCodes)
		for _, code := range catCodes {
			cat := node.Categories[code]
			catDTO := CategoryDTO{
				Category: code,
				Values:   periodValuesToDTO(cat.Valores),
			}
			for _, s := range cat.Fornecedores {
				catDTO.Fornecedores = append(catDTO.Fornecedores, SupplierDTO{
					Fornecedor: s.Fornecedor,
					Values:     periodValuesToDTO(s.Valores),
					Total:      s.Total,
				})
			}
			deptDTO.Categories = append(deptDTO.Categories, catDTO)
		}
		dto.Departments = append(dto.Departments, deptDTO)
	}
	return dto
}

// FromDTO rebuilds the in-memory aggregation result from its wire form.
func FromDTO(dto AccountResultDTO) AccountResult {
	res := AccountResult{
		Classes:        make(ClassMatrix, len(dto.Classes)),
		Departments:    make(DepartmentMatrix, len(dto.Departments)),
		Periods:        make(map[string]struct{}, len(dto.Periods)),
		OpeningBalance: dto.OpeningBalance,
	}
	for _, row := range dto.Classes {
		res.Classes[row.Class] = periodValuesFromDTO(row.Values)
	}
	for _, deptDTO := range dto.Departments {
		node := &DepartmentNode{
			Name:       deptDTO.Name,
			Class:      deptDTO.Class,
			Categories: make(map[string]*CategoryNode, len(deptDTO.Categories)),
		}
		for _, catDTO := range deptDTO.Categories {
			cat := &CategoryNode{
				Valores:      periodValuesFromDTO(catDTO.Values),
				Fornecedores: make([]*Supplier, 0, len(catDTO.Fornecedores)),
			}
			for _, s := range catDTO.Fornecedores {
				cat.Fornecedores = append(cat.Fornecedores, &Supplier{
					Fornecedor: s.Fornecedor,
					Valores:    periodValuesFromDTO(s.Values),
					Total:      s.Total,
				})
			}
			node.Categories[catDTO.Category] = cat
		}
		res.Departments[DepartmentKey(deptDTO.Name, deptDTO.Class)] = node
	}
	for _, p := range dto.Periods {
		res.Periods[p] = struct{}{}
	}
	return res
}

func periodValuesToDTO(values map[string]float64) []PeriodValueDTO {
	periods := make([]string, 0, len(values))
	for p := range values {
		periods = append(periods, p)
	}
	SortPeriods(periods)
	out := make([]PeriodValueDTO, 0, len(periods))
	for _, p := range periods {
		out = append(out, PeriodValueDTO{Period: p, Value: values[p]})
	}
	return out
}

func periodValuesFromDTO(values []PeriodValueDTO) map[string]float64 {
	out := make(map[string]float64, len(values))
	for _, cell := range values {
		out[cell.Period] = cell.Value
	}
	return out
}
