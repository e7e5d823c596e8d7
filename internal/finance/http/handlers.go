// Package financehttp exposes the DRE dashboard endpoints consumed by
// the hosted front end.
package financehttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
	"github.com/Nexconge/plataforma-sub002/internal/finance"
	"github.com/Nexconge/plataforma-sub002/internal/platform/httpx"
)

const requestTimeout = 10 * time.Second

// ReportService is the orchestration contract used by the handler.
type ReportService interface {
	BuildReport(ctx context.Context, req finance.ReportRequest) (finance.ReportResult, error)
	SaveSnapshot(ctx context.Context, name string, req finance.ReportRequest) (finance.Snapshot, error)
	InvalidateCache(ctx context.Context) error
}

// Handler coordinates HTTP requests for the DRE dashboard.
type Handler struct {
	logger   *slog.Logger
	service  ReportService
	validate *validator.Validate
}

// NewHandler constructs the finance HTTP handler.
func NewHandler(logger *slog.Logger, service ReportService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

type reportQuery struct {
	Contas   []string
	Projetos []string
	Modo     string `validate:"required,oneof=mensal anual"`
	De       int    `validate:"required,gte=1900,lte=2200"`
	Ate      int    `validate:"required,gte=1900,lte=2200,gtefield=De"`
	Projecao bool
}

func (q reportQuery) toRequest() finance.ReportRequest {
	return finance.ReportRequest{
		Accounts:   q.Contas,
		Projects:   q.Projetos,
		Mode:       q.Modo,
		FromYear:   q.De,
		ToYear:     q.Ate,
		Projection: q.Projecao,
	}
}

func parseReportQuery(r *http.Request) (reportQuery, error) {
	q := r.URL.Query()
	query := reportQuery{
		Contas:   splitCSV(q.Get("contas")),
		Projetos: splitCSV(q.Get("projetos")),
		Modo:     q.Get("modo"),
		Projecao: q.Get("projecao") == "1" || strings.EqualFold(q.Get("projecao"), "true"),
	}
	if query.Modo == "" {
		query.Modo = dre.ModeMonthly
	}
	var err error
	if query.De, err = strconv.Atoi(q.Get("de")); err != nil {
		return reportQuery{}, errors.New("parâmetro 'de' inválido")
	}
	if query.Ate, err = strconv.Atoi(q.Get("ate")); err != nil {
		return reportQuery{}, errors.New("parâmetro 'ate' inválido")
	}
	return query, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type droppedRecordView struct {
	Titulo     int    `json:"titulo"`
	Lancamento int    `json:"lancamento"`
	Motivo     string `json:"motivo"`
}

type reportResponse struct {
	MatrizDRE           dre.ClassMatrix      `json:"matrizDRE"`
	MatrizDepartamentos dre.DepartmentMatrix `json:"matrizDepartamentos"`
	SaldoInicialPeriodo float64              `json:"saldoInicialPeriodo"`
	Colunas             []string             `json:"colunas"`
	Linhas              []string             `json:"linhas"`
	Contas              []string             `json:"contas"`
	Descartados         []droppedRecordView  `json:"descartados,omitempty"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, ok := h.buildReport(ctx, w, r)
	if !ok {
		return
	}

	resp := reportResponse{
		MatrizDRE:           result.Report.Classes,
		MatrizDepartamentos: result.Report.Departments,
		SaldoInicialPeriodo: result.Report.OpeningBalance,
		Colunas:             result.Columns,
		Linhas:              dre.DisplayRows(),
		Contas:              result.Accounts,
	}
	for _, d := range result.Dropped {
		resp.Descartados = append(resp.Descartados, droppedRecordView{
			Titulo:     d.TitleIndex,
			Lancamento: d.EntryIndex,
			Motivo:     d.Reason,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, ok := h.buildReport(ctx, w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dre.csv"`)
	if err := writeReportCSV(w, result); err != nil {
		h.logger.Error("write csv export", slog.Any("error", err))
	}
}

func (h *Handler) buildReport(ctx context.Context, w http.ResponseWriter, r *http.Request) (finance.ReportResult, bool) {
	query, err := parseReportQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return finance.ReportResult{}, false
	}
	if err := h.validate.Struct(query); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
		return finance.ReportResult{}, false
	}

	result, err := h.service.BuildReport(ctx, query.toRequest())
	if err != nil {
		h.respondError(w, err)
		return finance.ReportResult{}, false
	}
	return result, true
}

type snapshotRequest struct {
	Nome     string   `json:"nome" validate:"required,min=1,max=120"`
	Contas   []string `json:"contas"`
	Projetos []string `json:"projetos"`
	Modo     string   `json:"modo" validate:"required,oneof=mensal anual"`
	De       int      `json:"de" validate:"required,gte=1900,lte=2200"`
	Ate      int      `json:"ate" validate:"required,gte=1900,lte=2200,gtefield=De"`
	Projecao bool     `json:"projecao"`
}

type snapshotResponse struct {
	ID       string    `json:"id"`
	Nome     string    `json:"nome"`
	Modo     string    `json:"modo"`
	CriadoEm time.Time `json:"criadoEm"`
}

func (h *Handler) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var body snapshotRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Corpo inválido", err.Error())
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Corpo inválido", err.Error())
		return
	}

	snap, err := h.service.SaveSnapshot(ctx, body.Nome, finance.ReportRequest{
		Accounts:   body.Contas,
		Projects:   body.Projetos,
		Mode:       body.Modo,
		FromYear:   body.De,
		ToYear:     body.Ate,
		Projection: body.Projecao,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, snapshotResponse{
		ID:       snap.ID.String(),
		Nome:     snap.Name,
		Modo:     snap.Mode,
		CriadoEm: snap.CreatedAt,
	})
}

func (h *Handler) handleCacheBump(w http.ResponseWriter, r *http.Request) {
	if err := h.service.InvalidateCache(r.Context()); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, finance.ErrInvalidRequest):
		httpx.Problem(w, http.StatusBadRequest, "Parâmetros inválidos", err.Error())
	case errors.Is(err, finance.ErrSnapshotExists):
		httpx.Problem(w, http.StatusConflict, "Snapshot duplicado", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		httpx.Problem(w, http.StatusGatewayTimeout, "Tempo esgotado", "")
	default:
		h.logger.Error("finance report failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Erro interno", "")
	}
}
