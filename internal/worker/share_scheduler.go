// Package worker contiene procesos en segundo plano del host.
//
// share_scheduler.go
// Goroutine que una vez al día verifica si "hoy" es el día de disparo
// configurado y, si lo es, ejecuta el reparto de utilidades del mes ANTERIOR.
// Un Conflict del motor (reparto ya ejecutado) se registra como no-op
// esperado; cualquier otro fallo se registra con contexto y se reintenta en
// el siguiente tick diario, nunca con reintentos internos.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/lotes-api/internal/application/profitshare"
	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/pkg/logger"
)

const defaultCheckInterval = 24 * time.Hour

// SchedulerConfig parámetros del scheduler de repartos.
type SchedulerConfig struct {
	TriggerDay    int            // día del mes que dispara el reparto (24 por diseño)
	CheckInterval time.Duration  // intervalo entre chequeos (24h por defecto)
	Location      *time.Location // misma zona de calendario que el motor de repartos
}

// ShareScheduler es un recurso con dueño explícito (Start/Stop/IsRunning), no
// un singleton ambiental: varios tests o réplicas del proceso pueden poseer
// cada uno su propio handle sin interferirse.
type ShareScheduler struct {
	uc  *profitshare.ShareUseCase
	log *logger.Logger
	cfg SchedulerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	now func() time.Time // inyectable en tests
}

// NewShareScheduler construye el scheduler.
func NewShareScheduler(uc *profitshare.ShareUseCase, log *logger.Logger, cfg SchedulerConfig) *ShareScheduler {
	if cfg.TriggerDay <= 0 || cfg.TriggerDay > 28 {
		cfg.TriggerDay = 24
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ShareScheduler{uc: uc, log: log, cfg: cfg, now: time.Now}
}

// Start lanza la goroutine del timer. Idempotente: si ya corre, no hace nada.
func (s *ShareScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.cfg.CheckInterval)
		defer ticker.Stop()

		s.log.Info().
			Int("trigger_day", s.cfg.TriggerDay).
			Dur("interval", s.cfg.CheckInterval).
			Msg("share_scheduler: iniciado")

		// Chequeo inmediato al arrancar: un proceso reiniciado el día de
		// disparo no espera al primer tick del ticker.
		s.ExecuteDailyCheck(ctx)

		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("share_scheduler: detenido")
				return
			case <-ticker.C:
				s.ExecuteDailyCheck(ctx)
			}
		}
	}(s.done)
}

// Stop detiene la goroutine y espera a que termine. Idempotente.
func (s *ShareScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
}

// IsRunning indica si la goroutine del timer está activa.
func (s *ShareScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// ExecuteDailyCheck realiza el chequeo de día y ejecuta el reparto del mes
// anterior si corresponde. Es síncrono para poder invocarse de forma
// determinista desde tests o desde el callback del ticker. Nunca propaga
// errores al host: el scheduler no debe tumbar el proceso.
func (s *ShareScheduler) ExecuteDailyCheck(ctx context.Context) {
	today := s.now().In(s.cfg.Location)
	if today.Day() != s.cfg.TriggerDay {
		return
	}

	month, year := PreviousMonth(today)
	share, err := s.uc.Execute(ctx, month, year)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Ya ejecutado este mes (p. ej. disparo manual previo): no-op esperado.
			s.log.Info().Int("month", month).Int("year", year).
				Msg("share_scheduler: reparto ya ejecutado, nada que hacer")
			return
		}
		s.log.Error().Err(err).Int("month", month).Int("year", year).
			Msg("share_scheduler: fallo al ejecutar reparto; se reintenta en el próximo tick")
		return
	}

	s.log.Info().
		Int("month", month).
		Int("year", year).
		Str("share_id", share.ID).
		Str("total_profit", share.TotalProfit.String()).
		Msg("share_scheduler: reparto ejecutado")
}

// PreviousMonth devuelve el mes calendario anterior a t, manejando el
// rollover diciembre/enero.
func PreviousMonth(t time.Time) (month, year int) {
	month = int(t.Month()) - 1
	year = t.Year()
	if month == 0 {
		month = 12
		year--
	}
	return month, year
}
