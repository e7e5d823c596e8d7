package financehttp

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
	"github.com/Nexconge/plataforma-sub002/internal/finance"
)

// writeReportCSV renders the DRE matrix with pt-BR number formatting.
// The delimiter is a semicolon because the decimal separator is a comma.
func writeReportCSV(w io.Writer, result finance.ReportResult) error {
	printer := message.NewPrinter(language.BrazilianPortuguese)
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := append([]string{"Linha"}, result.Columns...)
	header = append(header, dre.TotalColumn)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range dre.DisplayRows() {
		record := make([]string, 0, len(header))
		record = append(record, row)
		for _, col := range result.Columns {
			record = append(record, printer.Sprintf("%.2f", result.Report.Classes.Value(row, col)))
		}
		record = append(record, printer.Sprintf("%.2f", result.Report.Classes.Value(row, dre.TotalColumn)))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
