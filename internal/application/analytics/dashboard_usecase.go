package analytics

import (
	"context"
	"time"

	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// DashboardUseCase agrega métricas de solo lectura para el tablero principal.
// No muta estado: vive fuera del motor transaccional.
type DashboardUseCase struct {
	repo repository.ReportRepository
	loc  *time.Location
	now  func() time.Time
}

// NewDashboardUseCase construye el caso de uso con la zona de calendario de
// la aplicación (la misma que usa el motor de repartos).
func NewDashboardUseCase(repo repository.ReportRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{repo: repo, loc: loc, now: time.Now}
}

// GetDashboard devuelve los agregados del mes en curso.
func (uc *DashboardUseCase) GetDashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	today := uc.now().In(uc.loc)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, uc.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)

	summary, err := uc.repo.GetDashboardSummary(ctx, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		BatchCount:        summary.BatchCount,
		UnitsInStock:      summary.UnitsInStock,
		StockCostValue:    summary.StockCostValue,
		ProfitThisMonth:   summary.ProfitThisMonth,
		UnsharedProfit:    summary.UnsharedProfit,
		LastShareExecuted: summary.LastShareExecuted,
	}, nil
}
