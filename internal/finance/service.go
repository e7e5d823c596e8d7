package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
)

// fetchConcurrency bounds the per-(account, period) fan-out.
const fetchConcurrency = 8

// ErrInvalidRequest marks report requests that fail validation.
var ErrInvalidRequest = errors.New("finance: invalid report request")

// TitleRepository is the data access contract of the orchestration layer.
type TitleRepository interface {
	LoadRefData(ctx context.Context) (RefData, error)
	TitlesByAccountYear(ctx context.Context, account string, year int) ([]dre.Title, error)
	OpenTitlesByAccount(ctx context.Context, account string) ([]dre.Title, error)
	EarliestLedgerYear(ctx context.Context) (int, error)
	InsertSnapshot(ctx context.Context, snap Snapshot) error
}

// Service coordinates fetching, caching, aggregation, and merge.
type Service struct {
	repo   TitleRepository
	cache  *Cache
	logger *slog.Logger
}

// NewService wires the repository with the result cache.
func NewService(repo TitleRepository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ReportRequest carries the dashboard filter parameters.
type ReportRequest struct {
	Accounts   []string
	Projects   []string
	Mode       string
	FromYear   int
	ToYear     int
	Projection bool
}

// Validate checks the filter parameters before any fetch happens.
func (r ReportRequest) Validate() error {
	if r.Mode != dre.ModeMonthly && r.Mode != dre.ModeAnnual {
		return fmt.Errorf("%w: modo %q", ErrInvalidRequest, r.Mode)
	}
	if r.FromYear < 1900 || r.ToYear < 1900 {
		return fmt.Errorf("%w: intervalo de anos", ErrInvalidRequest)
	}
	if r.FromYear > r.ToYear {
		return fmt.Errorf("%w: ano inicial %d após ano final %d", ErrInvalidRequest, r.FromYear, r.ToYear)
	}
	return nil
}

// ReportResult is the merged report plus the request's visible columns
// and the extraction diagnostics gathered on cache misses.
type ReportResult struct {
	Report   dre.Report
	Columns  []string
	Accounts []string
	Dropped  []dre.DroppedRecord
}

// VisibleColumns enumerates the period columns of a year range for the
// given mode, already in chronological order.
func VisibleColumns(mode string, fromYear, toYear int) []string {
	var columns []string
	for year := fromYear; year <= toYear; year++ {
		if mode == dre.ModeAnnual {
			columns = append(columns, strconv.Itoa(year))
			continue
		}
		for month := 1; month <= 12; month++ {
			columns = append(columns, dre.MonthKey(dre.Date{Month: month, Year: year}))
		}
	}
	return columns
}

// BuildReport resolves the account selection, loads every required
// (account, period) aggregation through the cache, and merges them into
// the DRE report. Fetches run concurrently; aggregation and merge stay
// sequential and pure.
func (s *Service) BuildReport(ctx context.Context, req ReportRequest) (ReportResult, error) {
	if err := req.Validate(); err != nil {
		return ReportResult{}, err
	}

	ref, err := s.repo.LoadRefData(ctx)
	if err != nil {
		return ReportResult{}, err
	}

	columns := VisibleColumns(req.Mode, req.FromYear, req.ToYear)
	accounts := ref.ExpandAccounts(req.Accounts, req.Projects)
	if len(accounts) == 0 {
		return ReportResult{
			Report:  dre.MergeAccountResults(nil, req.Mode, columns),
			Columns: columns,
		}, nil
	}

	slots, err := s.fetchSlots(ctx, req, accounts)
	if err != nil {
		return ReportResult{}, err
	}

	loaded, dropped, err := s.loadResults(ctx, ref, slots)
	if err != nil {
		return ReportResult{}, err
	}

	perAccount := make([]dre.AccountResult, 0, len(accounts))
	for _, account := range accounts {
		combined := dre.CombineAccountResults(loaded[account])
		combined.OpeningBalance = ref.OpeningBalance(account)
		perAccount = append(perAccount, combined)
	}

	return ReportResult{
		Report:   dre.MergeAccountResults(perAccount, req.Mode, columns),
		Columns:  columns,
		Accounts: accounts,
		Dropped:  dropped,
	}, nil
}

// resultSlot identifies one cacheable aggregation unit.
type resultSlot struct {
	account string
	tag     string // ledger year, or ProjectionTag
	year    int
}

// fetchSlots decides which (account, period) units the request needs.
// Settled-mode requests cover the whole ledger history up to the window
// end, so the opening-balance carry-forward sees every prior posting.
func (s *Service) fetchSlots(ctx context.Context, req ReportRequest, accounts []string) ([]resultSlot, error) {
	if req.Projection {
		slots := make([]resultSlot, 0, len(accounts))
		for _, account := range accounts {
			slots = append(slots, resultSlot{account: account, tag: ProjectionTag})
		}
		return slots, nil
	}

	firstYear, err := s.repo.EarliestLedgerYear(ctx)
	if err != nil {
		return nil, err
	}
	if firstYear == 0 || firstYear > req.FromYear {
		firstYear = req.FromYear
	}
	var slots []resultSlot
	for _, account := range accounts {
		for year := firstYear; year <= req.ToYear; year++ {
			slots = append(slots, resultSlot{account: account, tag: strconv.Itoa(year), year: year})
		}
	}
	return slots, nil
}

// loadResults resolves every slot through the cache, fetching and
// aggregating on miss. Extraction diagnostics are only produced for
// slots actually loaded in this call; cache hits were reported when
// first built.
func (s *Service) loadResults(ctx context.Context, ref RefData, slots []resultSlot) (map[string][]dre.AccountResult, []dre.DroppedRecord, error) {
	var (
		mu      sync.Mutex
		results = make(map[string][]dre.AccountResult, len(slots))
		dropped []dre.DroppedRecord
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for _, slot := range slots {
		g.Go(func() error {
			res, report, err := s.loadSlot(ctx, ref, slot)
			if err != nil {
				return err
			}
			mu.Lock()
			results[slot.account] = append(results[slot.account], res)
			dropped = append(dropped, report.Dropped...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, dropped, nil
}

func (s *Service) loadSlot(ctx context.Context, ref RefData, slot resultSlot) (dre.AccountResult, dre.ExtractReport, error) {
	var report dre.ExtractReport
	loader := func(ctx context.Context) (interface{}, error) {
		titles, err := s.fetchTitles(ctx, slot)
		if err != nil {
			return nil, err
		}
		entries, extractReport := dre.ExtractEntries(titles)
		report = extractReport
		if len(extractReport.Dropped) > 0 {
			s.logger.Warn("records dropped during extraction",
				slog.String("conta", slot.account),
				slog.String("periodo", slot.tag),
				slog.Int("descartados", len(extractReport.Dropped)))
		}
		return dre.ToDTO(dre.AggregateEntries(entries, ref.Refs, slot.account)), nil
	}

	key, err := s.cache.ResultKey(ctx, slot.account, slot.tag)
	if err != nil {
		return dre.AccountResult{}, dre.ExtractReport{}, err
	}
	var dto dre.AccountResultDTO
	if err := s.cache.FetchJSON(ctx, key, &dto, loader); err != nil {
		return dre.AccountResult{}, dre.ExtractReport{}, err
	}
	return dre.FromDTO(dto), report, nil
}

func (s *Service) fetchTitles(ctx context.Context, slot resultSlot) ([]dre.Title, error) {
	if slot.tag == ProjectionTag {
		return s.repo.OpenTitlesByAccount(ctx, slot.account)
	}
	return s.repo.TitlesByAccountYear(ctx, slot.account, slot.year)
}

// InvalidateCache bumps the cache version after an upstream resync.
func (s *Service) InvalidateCache(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
