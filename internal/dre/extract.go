package dre

import (
	"fmt"
	"strconv"
	"strings"
)

// Drop reasons surfaced by the extraction report.
const (
	DropNoEntries      = "titulo sem lançamentos"
	DropNoCategory     = "titulo sem categoria"
	DropMissingDate    = "lançamento sem data"
	DropMalformedDate  = "data fora do formato DD/MM/YYYY"
	DropMissingAccount = "lançamento sem conta"
	DropMissingAmount  = "lançamento sem valor"
)

// DroppedRecord identifies one skipped title or ledger entry. EntryIndex
// is -1 when the whole title was skipped.
type DroppedRecord struct {
	TitleIndex int
	EntryIndex int
	Reason     string
}

// ExtractReport accounts for every record the extractor refused, so
// callers can surface data-quality issues instead of losing them to a
// console log.
type ExtractReport struct {
	TitlesSeen    int
	EntriesSeen   int
	EntriesKept   int
	Dropped       []DroppedRecord
	DroppedTitles int
}

func (r *ExtractReport) dropTitle(idx int, reason string) {
	r.DroppedTitles++
	r.Dropped = append(r.Dropped, DroppedRecord{TitleIndex: idx, EntryIndex: -1, Reason: reason})
}

func (r *ExtractReport) dropEntry(titleIdx, entryIdx int, reason string) {
	r.Dropped = append(r.Dropped, DroppedRecord{TitleIndex: titleIdx, EntryIndex: entryIdx, Reason: reason})
}

// ExtractEntries flattens raw titles into normalized ledger entries,
// resolving each title's department apportionment into absolute values
// per entry. Malformed titles and entries are dropped, never fatal; the
// report lists every drop with its reason.
func ExtractEntries(titles []Title) ([]Entry, ExtractReport) {
	report := ExtractReport{TitlesSeen: len(titles)}
	entries := make([]Entry, 0, len(titles))

	for ti, title := range titles {
		if len(title.Lancamentos) == 0 {
			report.dropTitle(ti, DropNoEntries)
			continue
		}
		if strings.TrimSpace(title.Categoria) == "" {
			report.dropTitle(ti, DropNoCategory)
			continue
		}
		for li, lanc := range title.Lancamentos {
			report.EntriesSeen++
			if strings.TrimSpace(lanc.DataLancamento) == "" {
				report.dropEntry(ti, li, DropMissingDate)
				continue
			}
			if strings.TrimSpace(lanc.CODContaC) == "" {
				report.dropEntry(ti, li, DropMissingAccount)
				continue
			}
			if lanc.ValorLancamento == 0 {
				report.dropEntry(ti, li, DropMissingAmount)
				continue
			}
			date, err := ParseDate(lanc.DataLancamento)
			if err != nil {
				report.dropEntry(ti, li, DropMalformedDate)
				continue
			}
			entries = append(entries, Entry{
				Nature:   title.Natureza,
				Date:     date,
				Account:  lanc.CODContaC,
				Amount:   lanc.ValorLancamento,
				Category: title.Categoria,
				Client:   title.Cliente,
				Split:    splitDepartments(title.Departamentos, lanc.ValorLancamento),
			})
			report.EntriesKept++
		}
	}
	return entries, report
}

// splitDepartments resolves a title's apportionment schedule against one
// entry amount. A title without apportionments yields a single synthetic
// share on the default department carrying the full amount, so every
// entry lands in at least one department bucket.
func splitDepartments(apportionments []Apportionment, amount float64) []DepartmentShare {
	if len(apportionments) == 0 {
		return []DepartmentShare{{Department: DefaultDepartmentCode, Value: amount}}
	}
	split := make([]DepartmentShare, 0, len(apportionments))
	for _, ap := range apportionments {
		split = append(split, DepartmentShare{
			Department: ap.CODDepto,
			Value:      amount * (ap.PercDepto / 100),
		})
	}
	return split
}

// ParseDate parses a "DD/MM/YYYY" posting date.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("dre: data %q fora do formato DD/MM/YYYY", s)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Date{}, fmt.Errorf("dre: dia inválido em %q", s)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Date{}, fmt.Errorf("dre: mês inválido em %q", s)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Date{}, fmt.Errorf("dre: ano inválido em %q", s)
	}
	if month < 1 || month > 12 || year == 0 {
		return Date{}, fmt.Errorf("dre: data %q inválida", s)
	}
	return Date{Day: day, Month: month, Year: year}, nil
}
