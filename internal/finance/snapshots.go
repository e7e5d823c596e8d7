package finance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nexconge/plataforma-sub002/internal/dre"
)

// ErrSnapshotExists indicates a snapshot name collision.
var ErrSnapshotExists = errors.New("finance: snapshot name already exists")

// Snapshot is a persisted, named DRE run kept for auditing and
// period-over-period comparison.
type Snapshot struct {
	ID        uuid.UUID
	Name      string
	Mode      string
	Filters   ReportRequest
	Report    dre.Report
	CreatedAt time.Time
}

// SaveSnapshot builds the report for the request and persists it under
// the given name. The stored report is a structural copy, so later
// mutation of the returned matrices cannot change what was saved.
func (s *Service) SaveSnapshot(ctx context.Context, name string, req ReportRequest) (Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Snapshot{}, fmt.Errorf("%w: nome do snapshot", ErrInvalidRequest)
	}
	result, err := s.BuildReport(ctx, req)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		ID:      uuid.New(),
		Name:    name,
		Mode:    req.Mode,
		Filters: req,
		Report: dre.Report{
			Classes:        dre.CloneClassMatrix(result.Report.Classes),
			Departments:    dre.CloneDepartmentMatrix(result.Report.Departments),
			OpeningBalance: result.Report.OpeningBalance,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertSnapshot(ctx, snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
