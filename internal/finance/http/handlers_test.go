package financehttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
	"github.com/Nexconge/plataforma-sub002/internal/finance"
)

type fakeService struct {
	lastRequest finance.ReportRequest
	result      finance.ReportResult
	err         error
	bumped      int
}

func (f *fakeService) BuildReport(ctx context.Context, req finance.ReportRequest) (finance.ReportResult, error) {
	f.lastRequest = req
	if f.err != nil {
		return finance.ReportResult{}, f.err
	}
	return f.result, nil
}

func (f *fakeService) SaveSnapshot(ctx context.Context, name string, req finance.ReportRequest) (finance.Snapshot, error) {
	if f.err != nil {
		return finance.Snapshot{}, f.err
	}
	return finance.Snapshot{ID: uuid.New(), Name: name, Mode: req.Mode, CreatedAt: time.Now()}, nil
}

func (f *fakeService) InvalidateCache(ctx context.Context) error {
	f.bumped++
	return f.err
}

func fixtureResult() finance.ReportResult {
	classes := make(dre.ClassMatrix)
	classes.Set(dre.ClassReceitaBruta, "01-2024", 100)
	classes.Set(dre.ClassReceitaBruta, dre.TotalColumn, 100)
	return finance.ReportResult{
		Report:   dre.Report{Classes: classes, Departments: make(dre.DepartmentMatrix), OpeningBalance: 55},
		Columns:  []string{"01-2024"},
		Accounts: []string{"100"},
		Dropped:  []dre.DroppedRecord{{TitleIndex: 2, EntryIndex: -1, Reason: dre.DropNoCategory}},
	}
}

func newTestRouter(svc ReportService) http.Handler {
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r
}

func TestHandleReportReturnsMatrices(t *testing.T) {
	svc := &fakeService{result: fixtureResult()}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/finance/dre?contas=100&modo=mensal&de=2024&ate=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var resp reportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SaldoInicialPeriodo != 55 {
		t.Fatalf("expected saldo 55 got %v", resp.SaldoInicialPeriodo)
	}
	if resp.MatrizDRE[dre.ClassReceitaBruta]["01-2024"] != 100 {
		t.Fatalf("unexpected matrix %v", resp.MatrizDRE)
	}
	if len(resp.Descartados) != 1 || resp.Descartados[0].Motivo != dre.DropNoCategory {
		t.Fatalf("unexpected descartados %v", resp.Descartados)
	}
	if svc.lastRequest.FromYear != 2024 || svc.lastRequest.Mode != "mensal" {
		t.Fatalf("unexpected request %+v", svc.lastRequest)
	}
}

func TestHandleReportValidatesQuery(t *testing.T) {
	router := newTestRouter(&fakeService{result: fixtureResult()})

	cases := []string{
		"/finance/dre?modo=mensal&de=abc&ate=2024",
		"/finance/dre?modo=semanal&de=2024&ate=2024",
		"/finance/dre?modo=mensal&de=2025&ate=2024",
	}
	for _, url := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", url, rec.Code)
		}
	}
}

func TestHandleReportMapsServiceErrors(t *testing.T) {
	svc := &fakeService{err: finance.ErrInvalidRequest}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/dre?modo=mensal&de=2024&ate=2024", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestHandleCSVExport(t *testing.T) {
	router := newTestRouter(&fakeService{result: fixtureResult()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/dre/export.csv?modo=mensal&de=2024&ate=2024", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Linha;01-2024;TOTAL") {
		t.Fatalf("missing header in %q", body)
	}
	// pt-BR formatting: decimal comma.
	if !strings.Contains(body, "100,00") {
		t.Fatalf("expected pt-BR formatted value in %q", body)
	}
}

func TestHandleCreateSnapshot(t *testing.T) {
	router := newTestRouter(&fakeService{})

	payload := `{"nome":"fechamento","modo":"mensal","de":2024,"ate":2024,"contas":["100"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/finance/dre/snapshots", strings.NewReader(payload)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var resp snapshotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Nome != "fechamento" || resp.ID == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandleCreateSnapshotConflict(t *testing.T) {
	router := newTestRouter(&fakeService{err: finance.ErrSnapshotExists})

	payload := `{"nome":"fechamento","modo":"mensal","de":2024,"ate":2024}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/finance/dre/snapshots", strings.NewReader(payload)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestHandleCacheBump(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/finance/cache/bump", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if svc.bumped != 1 {
		t.Fatalf("expected one bump got %d", svc.bumped)
	}
}
