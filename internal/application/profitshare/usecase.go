package profitshare

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// Config parámetros del motor de repartos.
type Config struct {
	MinYear  int            // año mínimo aceptado en Execute
	Location *time.Location // zona horaria del calendario de referencia (fijada por config, nunca la del host)
}

// ShareUseCase ejecuta el reparto mensual de utilidades: suma la utilidad de
// las órdenes no bloqueadas del mes, la divide entre los socios y bloquea
// permanentemente las órdenes incluidas, todo en una transacción.
type ShareUseCase struct {
	txRunner  ShareTxRunner
	shareRepo repository.ProfitShareRepository
	cfg       Config
}

// NewShareUseCase construye el caso de uso.
func NewShareUseCase(txRunner ShareTxRunner, shareRepo repository.ProfitShareRepository, cfg Config) *ShareUseCase {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MinYear == 0 {
		cfg.MinYear = 2020
	}
	return &ShareUseCase{txRunner: txRunner, shareRepo: shareRepo, cfg: cfg}
}

// MonthWindow devuelve la ventana de calendario del mes como intervalo
// semiabierto [primerDía 00:00:00, primerDía del mes siguiente) en la zona
// configurada. Equivale a la ventana inclusiva hasta 23:59:59.999 sin casos
// límite de milisegundos.
func (uc *ShareUseCase) MonthWindow(month, year int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, uc.cfg.Location)
	end = start.AddDate(0, 1, 0)
	return start, end
}

// Execute ejecuta el reparto de (month, year) exactamente una vez:
//  1. valida rangos (ValidationError),
//  2. pre-chequea unicidad (ErrConflict si ya existe); el UNIQUE (month,
//     year) de la tabla cubre la carrera entre dos disparos concurrentes:
//     el perdedor recibe ErrConflict, nunca un duplicado silencioso,
//  3. en una tx: bloquea y suma las órdenes no bloqueadas de la ventana,
//     inserta el reparto y marca locked = true en todas ellas.
//
// Un total negativo (mes con pérdida) es válido y se propaga sin modificar.
func (uc *ShareUseCase) Execute(ctx context.Context, month, year int) (*dto.ProfitShareResponse, error) {
	verr := &domain.ValidationError{}
	if month < 1 || month > 12 {
		verr.Add("month", "debe estar entre 1 y 12")
	}
	if year < uc.cfg.MinYear {
		verr.Add("year", "anterior al año mínimo configurado")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	existing, err := uc.shareRepo.GetByMonthYear(month, year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrConflict
	}

	start, end := uc.MonthWindow(month, year)
	now := time.Now()

	var share *entity.ProfitShare
	var lockedCount int

	err = uc.txRunner.RunShare(ctx, func(
		orderRepo repository.SalesOrderRepository,
		shareRepo repository.ProfitShareRepository,
	) error {
		orders, err := orderRepo.ListUnlockedInRange(start, end)
		if err != nil {
			return err
		}

		total := decimal.Zero
		ids := make([]string, 0, len(orders))
		for _, o := range orders {
			total = total.Add(o.TotalProfit)
			ids = append(ids, o.ID)
		}

		share = &entity.ProfitShare{
			ID:             uuid.New().String(),
			Month:          month,
			Year:           year,
			TotalProfit:    total,
			AmountPerOwner: total.Div(decimal.NewFromInt(entity.OwnerCount)),
			ExecutedAt:     now,
			CreatedAt:      now,
		}
		if err := shareRepo.Create(share); err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := orderRepo.LockOrders(ids); err != nil {
				return err
			}
		}
		lockedCount = len(ids)
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toShareResponse(share)
	resp.OrdersLocked = lockedCount
	return resp, nil
}

// GetByID obtiene un reparto por ID.
func (uc *ShareUseCase) GetByID(ctx context.Context, id string) (*dto.ProfitShareResponse, error) {
	share, err := uc.shareRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, domain.ErrNotFound
	}
	return toShareResponse(share), nil
}

// GetByMonthYear obtiene el reparto de un mes (para chequeos de idempotencia
// por parte de llamadores externos). Devuelve ErrNotFound si no se ha ejecutado.
func (uc *ShareUseCase) GetByMonthYear(ctx context.Context, month, year int) (*dto.ProfitShareResponse, error) {
	share, err := uc.shareRepo.GetByMonthYear(month, year)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, domain.ErrNotFound
	}
	return toShareResponse(share), nil
}

// List devuelve todos los repartos, ejecutados más recientes primero.
func (uc *ShareUseCase) List(ctx context.Context) (*dto.ProfitShareListResponse, error) {
	shares, err := uc.shareRepo.List()
	if err != nil {
		return nil, err
	}
	out := &dto.ProfitShareListResponse{Shares: make([]dto.ProfitShareResponse, 0, len(shares))}
	for _, s := range shares {
		out.Shares = append(out.Shares, *toShareResponse(s))
	}
	out.Total = len(out.Shares)
	return out, nil
}

func toShareResponse(s *entity.ProfitShare) *dto.ProfitShareResponse {
	return &dto.ProfitShareResponse{
		ID:             s.ID,
		Month:          s.Month,
		Year:           s.Year,
		TotalProfit:    s.TotalProfit,
		AmountPerOwner: s.AmountPerOwner,
		ExecutedAt:     s.ExecutedAt,
		CreatedAt:      s.CreatedAt,
	}
}
