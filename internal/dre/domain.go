// Package dre implements the financial aggregation engine behind the
// cash-flow/DRE dashboard: extraction of ledger entries from raw titles,
// per-account aggregation into period-keyed matrices, cross-account merge
// with opening-balance carry-forward, and the derived-row totals chain.
//
// Everything in this package is pure computation over in-memory values.
// Functions never retain references to their inputs and all mutation is
// confined to freshly allocated outputs, so results are cacheable and the
// package is safe to call from concurrent orchestration code.
package dre

// Nature discriminates revenue-like from payment-like titles. It decides
// the sign applied to every monetary amount during aggregation.
const (
	NatureReceipt = "R"
	NaturePayment = "P"
)

// DRE line labels. Raw classes receive sums of ledger entries; computed
// rows are always derived by the totals chain, never accumulated directly.
const (
	ClassReceitaBruta        = "(+) Receita Bruta"
	ClassDeducoes            = "(-) Deduções"
	ClassCustos              = "(-) Custos"
	ClassDespesas            = "(-) Despesas"
	ClassIRPJCSLL            = "(-) IRPJ/CSLL"
	ClassResultadoFinanceiro = "(+/-) Resultado Financeiro"
	ClassAportesRetiradas    = "Aportes/Retiradas"
	ClassInvestimentos       = "Investimentos"
	ClassEmprestimos         = "Empréstimos/Consórcios"
	ClassEntradaTransf       = "Entrada de Transferência"
	ClassSaidaTransf         = "Saída de Transferência"
	ClassOutros              = "Outros"

	ClassReceitaLiquida  = "(=) Receita Líquida"
	ClassGeracaoCaixa    = "(=) Geração de Caixa Operacional"
	ClassMovimentacaoNOp = "(=) Movimentação Não Operacional"
	ClassMovimentacaoMes = "(=) Movimentação Mensal"
	ClassCaixaInicial    = "Caixa Inicial"
	ClassCaixaFinal      = "Caixa Final"
)

// TotalColumn is the synthetic column holding the per-row sum of the
// visible period columns.
const TotalColumn = "TOTAL"

// displayOrder is the fixed top-to-bottom order of DRE lines on the
// dashboard and in exports.
var displayOrder = []string{
	ClassReceitaBruta,
	ClassDeducoes,
	ClassReceitaLiquida,
	ClassCustos,
	ClassDespesas,
	ClassIRPJCSLL,
	ClassGeracaoCaixa,
	ClassResultadoFinanceiro,
	ClassAportesRetiradas,
	ClassInvestimentos,
	ClassEmprestimos,
	ClassMovimentacaoNOp,
	ClassMovimentacaoMes,
	ClassEntradaTransf,
	ClassSaidaTransf,
	ClassOutros,
	ClassCaixaInicial,
	ClassCaixaFinal,
}

// DisplayRows returns the DRE lines in presentation order.
func DisplayRows() []string {
	return append([]string(nil), displayOrder...)
}

// DefaultDepartmentCode buckets entries whose title carries no
// apportionment schedule.
const DefaultDepartmentCode = 0

// DefaultDepartmentName labels the synthetic bucket for unmapped or
// absent departments.
const DefaultDepartmentName = "Outros Departamentos"

// detailableClasses lists the DRE lines that fan out into the
// department/category/supplier breakdown matrix.
var detailableClasses = map[string]struct{}{
	ClassCustos:        {},
	ClassDespesas:      {},
	ClassInvestimentos: {},
}

// Detailable reports whether entries classified under class feed the
// department breakdown matrix.
func Detailable(class string) bool {
	_, ok := detailableClasses[class]
	return ok
}

// Title is one billing/payment document as delivered by the upstream
// platform. A title owns one or more ledger entries and an optional
// department apportionment schedule.
type Title struct {
	Natureza      string          `json:"Natureza"`
	Categoria     string          `json:"Categoria"`
	Cliente       string          `json:"Cliente"`
	Departamentos []Apportionment `json:"Departamentos"`
	Lancamentos   []TitleEntry    `json:"Lancamentos"`
}

// Apportionment is a percentage share of a title's value assigned to a
// department. PercDepto ranges 0-100.
type Apportionment struct {
	CODDepto  int     `json:"CODDepto"`
	PercDepto float64 `json:"PercDepto"`
}

// TitleEntry is a raw ledger posting inside a title. The amount is always
// stored positive; the sign derives from the owning title's nature.
type TitleEntry struct {
	DataLancamento  string  `json:"DataLancamento"`
	CODContaC       string  `json:"CODContaC"`
	ValorLancamento float64 `json:"ValorLancamento"`
}

// Date is a parsed DD/MM/YYYY posting date.
type Date struct {
	Day   int
	Month int
	Year  int
}

// DepartmentShare is an entry amount (or slice of it) attributed to one
// department after the percentage split is resolved.
type DepartmentShare struct {
	Department int
	Value      float64
}

// Entry is a normalized ledger entry produced by extraction: one posting
// flattened together with the classification-relevant fields of its
// owning title.
type Entry struct {
	Nature   string
	Date     Date
	Account  string
	Amount   float64
	Category string
	Client   string
	Split    []DepartmentShare
}

// ClassMatrix maps a DRE line label to period-keyed running totals.
type ClassMatrix map[string]map[string]float64

// Add accumulates value into row/column, allocating as needed.
func (m ClassMatrix) Add(row, column string, value float64) {
	cells, ok := m[row]
	if !ok {
		cells = make(map[string]float64)
		m[row] = cells
	}
	cells[column] += value
}

// Set overwrites the cell at row/column, allocating as needed.
func (m ClassMatrix) Set(row, column string, value float64) {
	cells, ok := m[row]
	if !ok {
		cells = make(map[string]float64)
		m[row] = cells
	}
	cells[column] = value
}

// Value returns the cell amount, zero when the row or column is absent.
func (m ClassMatrix) Value(row, column string) float64 {
	return m[row][column]
}

// Supplier accumulates one client/supplier's contribution inside a
// category bucket.
type Supplier struct {
	Fornecedor string             `json:"fornecedor"`
	Valores    map[string]float64 `json:"valores"`
	Total      float64            `json:"total"`
}

// CategoryNode aggregates one category inside a department/class bucket.
// Fornecedores is kept sorted descending by total once a build or merge
// pass finishes.
type CategoryNode struct {
	Valores      map[string]float64 `json:"valores"`
	Fornecedores []*Supplier        `json:"fornecedores"`
}

// DepartmentNode is one department/class bucket of the breakdown matrix.
type DepartmentNode struct {
	Name       string                   `json:"nome"`
	Class      string                   `json:"classe"`
	Categories map[string]*CategoryNode `json:"categorias"`
}

// DepartmentMatrix maps "<departmentName>|<className>" to its breakdown
// bucket. Only detailable classes ever appear here.
type DepartmentMatrix map[string]*DepartmentNode

// DepartmentKey builds the composite breakdown key.
func DepartmentKey(department, class string) string {
	return department + "|" + class
}

// CategoryInfo is the reference metadata resolving a category code.
type CategoryInfo struct {
	Classe    string
	Categoria string
}

// Refs bundles the reference lookups consumed by aggregation. The maps
// are read-only from the engine's point of view.
type Refs struct {
	Categories  map[string]CategoryInfo
	Departments map[int]string
}

// ClassForCategory resolves a category code to its DRE line, falling
// back to the Outros bucket for unmapped codes.
func (r Refs) ClassForCategory(code string) string {
	if info, ok := r.Categories[code]; ok && info.Classe != "" {
		return info.Classe
	}
	return ClassOutros
}

// DepartmentName resolves a department code, falling back to the
// synthetic bucket name.
func (r Refs) DepartmentName(code int) string {
	if name, ok := r.Departments[code]; ok && name != "" {
		return name
	}
	return DefaultDepartmentName
}

// AccountResult is the outcome of aggregating one account's entries.
type AccountResult struct {
	Classes        ClassMatrix
	Departments    DepartmentMatrix
	Periods        map[string]struct{}
	OpeningBalance float64
}

// Report is the merged, display-ready DRE produced by MergeAccountResults.
type Report struct {
	Classes        ClassMatrix
	Departments    DepartmentMatrix
	OpeningBalance float64
}
