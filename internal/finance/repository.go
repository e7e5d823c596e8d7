package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
)

// Repository provides PostgreSQL backed access to the synced title store
// and the finance reference tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadRefData builds the reference bundle from the finance master tables.
func (r *Repository) LoadRefData(ctx context.Context) (RefData, error) {
	ref := RefData{
		Refs: dre.Refs{
			Categories:  make(map[string]dre.CategoryInfo),
			Departments: make(map[int]string),
		},
		Accounts: make(map[string]Account),
		Projects: make(map[string]Project),
	}

	rows, err := r.pool.Query(ctx, `SELECT codigo, classe, categoria FROM categorias`)
	if err != nil {
		return RefData{}, fmt.Errorf("finance: load categorias: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var info dre.CategoryInfo
		if err := rows.Scan(&code, &info.Classe, &info.Categoria); err != nil {
			return RefData{}, err
		}
		ref.Refs.Categories[code] = info
	}
	if err := rows.Err(); err != nil {
		return RefData{}, err
	}

	deptRows, err := r.pool.Query(ctx, `SELECT codigo, nome FROM departamentos`)
	if err != nil {
		return RefData{}, fmt.Errorf("finance: load departamentos: %w", err)
	}
	defer deptRows.Close()
	for deptRows.Next() {
		var code int
		var name string
		if err := deptRows.Scan(&code, &name); err != nil {
			return RefData{}, err
		}
		ref.Refs.Departments[code] = name
	}
	if err := deptRows.Err(); err != nil {
		return RefData{}, err
	}

	accountRows, err := r.pool.Query(ctx, `SELECT codigo, descricao, saldo_inicial FROM contas`)
	if err != nil {
		return RefData{}, fmt.Errorf("finance: load contas: %w", err)
	}
	defer accountRows.Close()
	for accountRows.Next() {
		var acc Account
		if err := accountRows.Scan(&acc.Codigo, &acc.Descricao, &acc.SaldoInicial); err != nil {
			return RefData{}, err
		}
		ref.Accounts[acc.Codigo] = acc
	}
	if err := accountRows.Err(); err != nil {
		return RefData{}, err
	}

	projectRows, err := r.pool.Query(ctx, `
		SELECT p.codigo, p.nome, COALESCE(array_agg(pc.conta) FILTER (WHERE pc.conta IS NOT NULL), '{}')
		FROM projetos p
		LEFT JOIN projeto_contas pc ON pc.projeto = p.codigo
		GROUP BY p.codigo, p.nome`)
	if err != nil {
		return RefData{}, fmt.Errorf("finance: load projetos: %w", err)
	}
	defer projectRows.Close()
	for projectRows.Next() {
		var project Project
		if err := projectRows.Scan(&project.Codigo, &project.Nome, &project.Contas); err != nil {
			return RefData{}, err
		}
		ref.Projects[project.Codigo] = project
	}
	if err := projectRows.Err(); err != nil {
		return RefData{}, err
	}

	return ref, nil
}

// TitlesByAccountYear returns the settled raw titles of one account whose
// postings fall in the given year.
func (r *Repository) TitlesByAccountYear(ctx context.Context, account string, year int) ([]dre.Title, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT payload FROM titulos_raw WHERE conta = $1 AND ano = $2 AND NOT aberto`,
		account, year)
	if err != nil {
		return nil, fmt.Errorf("finance: titles %s/%d: %w", account, year, err)
	}
	defer rows.Close()
	return scanTitles(rows)
}

// OpenTitlesByAccount returns the still-open (unsettled) titles of one
// account, used by the A Realizar projection.
func (r *Repository) OpenTitlesByAccount(ctx context.Context, account string) ([]dre.Title, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT payload FROM titulos_raw WHERE conta = $1 AND aberto`,
		account)
	if err != nil {
		return nil, fmt.Errorf("finance: open titles %s: %w", account, err)
	}
	defer rows.Close()
	return scanTitles(rows)
}

// EarliestLedgerYear reports the first year with any synced title, so the
// carry-forward can cover the whole ledger history. Zero means the store
// is empty.
func (r *Repository) EarliestLedgerYear(ctx context.Context) (int, error) {
	var year *int
	if err := r.pool.QueryRow(ctx, `SELECT MIN(ano) FROM titulos_raw WHERE NOT aberto`).Scan(&year); err != nil {
		return 0, fmt.Errorf("finance: earliest ledger year: %w", err)
	}
	if year == nil {
		return 0, nil
	}
	return *year, nil
}

// InsertSnapshot persists a named report snapshot. A name collision maps
// to ErrSnapshotExists.
func (r *Repository) InsertSnapshot(ctx context.Context, snap Snapshot) error {
	payload, err := json.Marshal(snap.Report)
	if err != nil {
		return fmt.Errorf("finance: encode snapshot: %w", err)
	}
	filters, err := json.Marshal(snap.Filters)
	if err != nil {
		return fmt.Errorf("finance: encode snapshot filters: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO dre_snapshots (id, nome, modo, filtros, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.Name, snap.Mode, filters, payload, snap.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSnapshotExists
		}
		return fmt.Errorf("finance: insert snapshot: %w", err)
	}
	return nil
}

func scanTitles(rows pgx.Rows) ([]dre.Title, error) {
	var titles []dre.Title
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var title dre.Title
		if err := json.Unmarshal(payload, &title); err != nil {
			return nil, fmt.Errorf("finance: decode title payload: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return titles, nil
}
