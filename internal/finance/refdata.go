// Package finance orchestrates the DRE aggregation engine: it loads
// reference data and raw titles, fans out per-(account, period) fetches
// behind a versioned result cache, and merges per-account aggregations
// into the display-ready report.
package finance

import (
	"sort"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
)

// Account is the chart-of-accounts reference entry.
type Account struct {
	Codigo       string
	Descricao    string
	SaldoInicial float64
}

// Project groups the cash accounts of one land-development project.
type Project struct {
	Codigo string
	Nome   string
	Contas []string
}

// RefData bundles the reference maps built once at initialisation. The
// engine treats them as read-only.
type RefData struct {
	Refs     dre.Refs
	Accounts map[string]Account
	Projects map[string]Project
}

// ExpandAccounts resolves the union of explicitly selected accounts and
// the member accounts of selected projects, deduplicated and sorted.
func (r RefData) ExpandAccounts(accounts, projects []string) []string {
	seen := make(map[string]struct{})
	for _, acc := range accounts {
		if acc != "" {
			seen[acc] = struct{}{}
		}
	}
	for _, code := range projects {
		project, ok := r.Projects[code]
		if !ok {
			continue
		}
		for _, acc := range project.Contas {
			if acc != "" {
				seen[acc] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for acc := range seen {
		out = append(out, acc)
	}
	sort.Strings(out)
	return out
}

// OpeningBalance returns the configured opening balance for an account,
// zero when the account is not in the reference map.
func (r RefData) OpeningBalance(account string) float64 {
	return r.Accounts[account].SaldoInicial
}
