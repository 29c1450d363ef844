package worker

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/application/profitshare"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes mínimos para armar un ShareUseCase real detrás del scheduler
// ──────────────────────────────────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders map[string]*entity.SalesOrder
}

func (f *fakeOrderRepo) Create(*entity.SalesOrder) error                  { return nil }
func (f *fakeOrderRepo) CreateItem(*entity.OrderItem) error               { return nil }
func (f *fakeOrderRepo) GetByID(string) (*entity.SalesOrder, error)       { return nil, nil }
func (f *fakeOrderRepo) GetByIDForUpdate(string) (*entity.SalesOrder, error) {
	return nil, nil
}
func (f *fakeOrderRepo) GetItemsByOrderID(string) ([]*entity.OrderItem, error) {
	return nil, nil
}
func (f *fakeOrderRepo) List(repository.OrderFilter) ([]*entity.SalesOrder, error) {
	return nil, nil
}
func (f *fakeOrderRepo) Delete(string) error { return nil }

func (f *fakeOrderRepo) ListUnlockedInRange(start, end time.Time) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range f.orders {
		if !o.Locked && !o.OrderDate.Before(start) && o.OrderDate.Before(end) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOrderRepo) LockOrders(ids []string) error {
	for _, id := range ids {
		if o, ok := f.orders[id]; ok {
			o.Locked = true
		}
	}
	return nil
}

type fakeShareRepo struct {
	shares []*entity.ProfitShare
}

func (f *fakeShareRepo) Create(s *entity.ProfitShare) error {
	f.shares = append(f.shares, s)
	return nil
}

func (f *fakeShareRepo) GetByID(string) (*entity.ProfitShare, error) { return nil, nil }

func (f *fakeShareRepo) GetByMonthYear(month, year int) (*entity.ProfitShare, error) {
	for _, s := range f.shares {
		if s.Month == month && s.Year == year {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeShareRepo) List() ([]*entity.ProfitShare, error) { return f.shares, nil }

type fakeRunner struct {
	orderRepo *fakeOrderRepo
	shareRepo *fakeShareRepo
}

func (f *fakeRunner) RunShare(ctx context.Context, fn func(repository.SalesOrderRepository, repository.ProfitShareRepository) error) error {
	return fn(f.orderRepo, f.shareRepo)
}

func newTestScheduler(trigger int, now time.Time) (*ShareScheduler, *fakeOrderRepo, *fakeShareRepo) {
	orderRepo := &fakeOrderRepo{orders: make(map[string]*entity.SalesOrder)}
	shareRepo := &fakeShareRepo{}
	uc := profitshare.NewShareUseCase(
		&fakeRunner{orderRepo: orderRepo, shareRepo: shareRepo},
		shareRepo,
		profitshare.Config{MinYear: 2020, Location: time.UTC},
	)
	s := NewShareScheduler(uc, logger.NewNop(), SchedulerConfig{
		TriggerDay: trigger,
		Location:   time.UTC,
	})
	s.now = func() time.Time { return now }
	return s, orderRepo, shareRepo
}

// ──────────────────────────────────────────────────────────────────────────────
// ExecuteDailyCheck
// ──────────────────────────────────────────────────────────────────────────────

func TestDailyCheck_DiaDistintoAlDisparo_NoHaceNada(t *testing.T) {
	s, _, shareRepo := newTestScheduler(24, time.Date(2024, 2, 23, 9, 0, 0, 0, time.UTC))

	s.ExecuteDailyCheck(context.Background())
	assert.Empty(t, shareRepo.shares, "fuera del día de disparo no se ejecuta nada")
}

// El día 24 ejecuta el reparto del mes ANTERIOR.
func TestDailyCheck_DiaDeDisparo_EjecutaMesAnterior(t *testing.T) {
	s, orderRepo, shareRepo := newTestScheduler(24, time.Date(2024, 2, 24, 9, 0, 0, 0, time.UTC))
	orderRepo.orders["o1"] = &entity.SalesOrder{
		ID:          "o1",
		OrderDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TotalProfit: decimal.NewFromInt(200),
	}

	s.ExecuteDailyCheck(context.Background())

	require.Len(t, shareRepo.shares, 1)
	assert.Equal(t, 1, shareRepo.shares[0].Month, "en febrero se reparte enero")
	assert.Equal(t, 2024, shareRepo.shares[0].Year)
	assert.True(t, shareRepo.shares[0].TotalProfit.Equal(decimal.NewFromInt(200)))
	assert.True(t, orderRepo.orders["o1"].Locked)
}

// En enero el mes anterior es diciembre del año previo.
func TestDailyCheck_RolloverEneroADiciembre(t *testing.T) {
	s, _, shareRepo := newTestScheduler(24, time.Date(2025, 1, 24, 9, 0, 0, 0, time.UTC))

	s.ExecuteDailyCheck(context.Background())

	require.Len(t, shareRepo.shares, 1)
	assert.Equal(t, 12, shareRepo.shares[0].Month)
	assert.Equal(t, 2024, shareRepo.shares[0].Year)
}

// Si el reparto ya se ejecutó (p. ej. disparo manual), el chequeo es un no-op.
func TestDailyCheck_RepartoYaEjecutado_NoOp(t *testing.T) {
	s, _, shareRepo := newTestScheduler(24, time.Date(2024, 2, 24, 9, 0, 0, 0, time.UTC))
	shareRepo.shares = append(shareRepo.shares, &entity.ProfitShare{Month: 1, Year: 2024})

	s.ExecuteDailyCheck(context.Background())

	assert.Len(t, shareRepo.shares, 1, "no debe crearse un segundo reparto")
}

// Dos chequeos el mismo día (reinicio del proceso) no duplican el reparto.
func TestDailyCheck_Idempotente(t *testing.T) {
	s, _, shareRepo := newTestScheduler(24, time.Date(2024, 2, 24, 9, 0, 0, 0, time.UTC))

	s.ExecuteDailyCheck(context.Background())
	s.ExecuteDailyCheck(context.Background())

	assert.Len(t, shareRepo.shares, 1)
}

func TestPreviousMonth(t *testing.T) {
	m, y := PreviousMonth(time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, m)
	assert.Equal(t, 2024, y)

	m, y = PreviousMonth(time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 12, m)
	assert.Equal(t, 2023, y)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo de vida Start/Stop
// ──────────────────────────────────────────────────────────────────────────────

func TestScheduler_StartStop(t *testing.T) {
	s, _, _ := newTestScheduler(24, time.Date(2024, 2, 23, 9, 0, 0, 0, time.UTC))

	assert.False(t, s.IsRunning())

	s.Start()
	assert.True(t, s.IsRunning())

	// Start repetido es un no-op.
	s.Start()
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())

	// Stop repetido también es un no-op.
	s.Stop()
	assert.False(t, s.IsRunning())
}

// Un proceso que arranca (o se reinicia) el día de disparo ejecuta el chequeo
// de inmediato, sin esperar 24h al primer tick.
func TestScheduler_Start_ChequeoInmediatoElDiaDeDisparo(t *testing.T) {
	s, orderRepo, shareRepo := newTestScheduler(24, time.Date(2024, 2, 24, 9, 0, 0, 0, time.UTC))
	orderRepo.orders["o1"] = &entity.SalesOrder{
		ID:          "o1",
		OrderDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TotalProfit: decimal.NewFromInt(75),
	}

	s.Start()
	// Stop espera a la goroutine, y el chequeo inmediato corre antes del loop.
	s.Stop()

	require.Len(t, shareRepo.shares, 1)
	assert.Equal(t, 1, shareRepo.shares[0].Month)
	assert.Equal(t, 2024, shareRepo.shares[0].Year)
	assert.True(t, orderRepo.orders["o1"].Locked)
}

func TestScheduler_ReinicioTrasStop(t *testing.T) {
	s, _, _ := newTestScheduler(24, time.Date(2024, 2, 23, 9, 0, 0, 0, time.UTC))

	s.Start()
	s.Stop()
	s.Start()
	assert.True(t, s.IsRunning(), "un handle detenido puede volver a iniciarse")
	s.Stop()
}
