package dre

import (
	"reflect"
	"testing"
)

func testRefs() Refs {
	return Refs{
		Categories: map[string]CategoryInfo{
			"C1": {Classe: ClassCustos, Categoria: "Obras Civis"},
			"C2": {Classe: ClassReceitaBruta, Categoria: "Venda de Lotes"},
			"C3": {Classe: ClassDespesas, Categoria: "Administrativo"},
		},
		Departments: map[int]string{
			10: "Obra",
			20: "Admin",
		},
	}
}

func TestAggregateEntriesExampleScenario(t *testing.T) {
	titles := []Title{
		{
			Natureza:  NaturePayment,
			Categoria: "C1",
			Cliente:   "Acme",
			Departamentos: []Apportionment{
				{CODDepto: 10, PercDepto: 60},
				{CODDepto: 20, PercDepto: 40},
			},
			Lancamentos: []TitleEntry{
				{DataLancamento: "15/03/2024", CODContaC: "100", ValorLancamento: 1000},
			},
		},
	}
	entries, _ := ExtractEntries(titles)

	res := AggregateEntries(entries, testRefs(), "100")
	if got := res.Classes.Value(ClassCustos, "03-2024"); !almostEqual(got, -1000) {
		t.Fatalf("expected -1000 got %v", got)
	}
	if _, ok := res.Periods["03-2024"]; !ok {
		t.Fatalf("expected period 03-2024 in %v", res.Periods)
	}

	obra := res.Departments[DepartmentKey("Obra", ClassCustos)]
	if obra == nil {
		t.Fatalf("missing Obra bucket: %v", res.Departments)
	}
	if got := obra.Categories["C1"].Valores["03-2024"]; !almostEqual(got, -600) {
		t.Fatalf("expected -600 got %v", got)
	}
	admin := res.Departments[DepartmentKey("Admin", ClassCustos)]
	if admin == nil {
		t.Fatalf("missing Admin bucket")
	}
	if got := admin.Categories["C1"].Valores["03-2024"]; !almostEqual(got, -400) {
		t.Fatalf("expected -400 got %v", got)
	}

	for _, node := range []*DepartmentNode{obra, admin} {
		suppliers := node.Categories["C1"].Fornecedores
		if len(suppliers) != 1 || suppliers[0].Fornecedor != "Acme" {
			t.Fatalf("unexpected suppliers %+v", suppliers)
		}
		var sum float64
		for _, v := range suppliers[0].Valores {
			sum += v
		}
		if !almostEqual(suppliers[0].Total, sum) {
			t.Fatalf("supplier total %v != valores sum %v", suppliers[0].Total, sum)
		}
	}
}

func TestAggregateEntriesSignInvariant(t *testing.T) {
	build := func(nature string) AccountResult {
		titles := []Title{{
			Natureza:  nature,
			Categoria: "C1",
			Cliente:   "Fornecedor X",
			Lancamentos: []TitleEntry{
				{DataLancamento: "10/06/2024", CODContaC: "100", ValorLancamento: 500},
			},
		}}
		entries, _ := ExtractEntries(titles)
		return AggregateEntries(entries, testRefs(), "100")
	}

	receipt := build(NatureReceipt)
	payment := build(NaturePayment)

	r := receipt.Classes.Value(ClassCustos, "06-2024")
	p := payment.Classes.Value(ClassCustos, "06-2024")
	if !almostEqual(r, -p) {
		t.Fatalf("expected negation, got R=%v P=%v", r, p)
	}

	key := DepartmentKey(DefaultDepartmentName, ClassCustos)
	rd := receipt.Departments[key].Categories["C1"].Valores["06-2024"]
	pd := payment.Departments[key].Categories["C1"].Valores["06-2024"]
	if !almostEqual(rd, -pd) {
		t.Fatalf("expected department negation, got R=%v P=%v", rd, pd)
	}
}

func TestAggregateEntriesFiltersAccountAndUnmappedCodes(t *testing.T) {
	titles := []Title{
		{
			Natureza:  NatureReceipt,
			Categoria: "ZZZ",
			Cliente:   "Cliente",
			Lancamentos: []TitleEntry{
				{DataLancamento: "01/02/2024", CODContaC: "100", ValorLancamento: 80},
				{DataLancamento: "01/02/2024", CODContaC: "999", ValorLancamento: 20},
			},
		},
	}
	entries, _ := ExtractEntries(titles)

	res := AggregateEntries(entries, testRefs(), "100")
	if got := res.Classes.Value(ClassOutros, "02-2024"); !almostEqual(got, 80) {
		t.Fatalf("expected unmapped category in Outros with 80, got %v", got)
	}
	if _, ok := res.Classes["ZZZ"]; ok {
		t.Fatalf("category code must not appear as class")
	}
	if len(res.Departments) != 0 {
		t.Fatalf("Outros is not detailable, got %v", res.Departments)
	}
}

func TestAggregateEntriesSortsSuppliersByTotalDescending(t *testing.T) {
	titles := []Title{
		{
			Natureza:  NaturePayment,
			Categoria: "C3",
			Cliente:   "Pequeno",
			Lancamentos: []TitleEntry{
				{DataLancamento: "05/04/2024", CODContaC: "100", ValorLancamento: 100},
			},
		},
		{
			Natureza:  NaturePayment,
			Categoria: "C3",
			Cliente:   "Grande",
			Lancamentos: []TitleEntry{
				{DataLancamento: "06/04/2024", CODContaC: "100", ValorLancamento: 900},
			},
		},
	}
	entries, _ := ExtractEntries(titles)

	res := AggregateEntries(entries, testRefs(), "100")
	suppliers := res.Departments[DepartmentKey(DefaultDepartmentName, ClassDespesas)].Categories["C3"].Fornecedores
	if len(suppliers) != 2 {
		t.Fatalf("expected 2 suppliers got %d", len(suppliers))
	}
	// Payments store negative totals; descending by total puts the
	// smaller outflow first.
	if suppliers[0].Fornecedor != "Pequeno" || suppliers[1].Fornecedor != "Grande" {
		t.Fatalf("unexpected order: %s, %s", suppliers[0].Fornecedor, suppliers[1].Fornecedor)
	}
	if suppliers[0].Total <= suppliers[1].Total {
		t.Fatalf("expected descending totals, got %v then %v", suppliers[0].Total, suppliers[1].Total)
	}
}

func TestAggregateEntriesIsIdempotent(t *testing.T) {
	titles := []Title{
		{
			Natureza:  NaturePayment,
			Categoria: "C1",
			Cliente:   "Acme",
			Departamentos: []Apportionment{
				{CODDepto: 10, PercDepto: 50},
				{CODDepto: 20, PercDepto: 50},
			},
			Lancamentos: []TitleEntry{
				{DataLancamento: "15/03/2024", CODContaC: "100", ValorLancamento: 1000},
				{DataLancamento: "20/04/2024", CODContaC: "100", ValorLancamento: 250},
			},
		},
	}
	entries, _ := ExtractEntries(titles)
	refs := testRefs()

	first := AggregateEntries(entries, refs, "100")
	second := AggregateEntries(entries, refs, "100")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation is not idempotent:\nfirst=%+v\nsecond=%+v", first, second)
	}
	if !reflect.DeepEqual(refs, testRefs()) {
		t.Fatalf("reference maps were mutated")
	}
}

func TestAggregateEntriesEmptyInput(t *testing.T) {
	res := AggregateEntries(nil, testRefs(), "100")
	if len(res.Classes) != 0 || len(res.Departments) != 0 || len(res.Periods) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}
