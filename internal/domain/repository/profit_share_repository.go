package repository

import "github.com/jhoicas/lotes-api/internal/domain/entity"

// ProfitShareRepository define el puerto de persistencia para ProfitShare.
type ProfitShareRepository interface {
	// Create persiste el reparto. El constraint UNIQUE (month, year) de la
	// tabla es la garantía dura contra ejecuciones duplicadas; una violación
	// se devuelve como domain.ErrConflict.
	Create(share *entity.ProfitShare) error
	GetByID(id string) (*entity.ProfitShare, error)
	GetByMonthYear(month, year int) (*entity.ProfitShare, error)
	// List devuelve todos los repartos ordenados por executed_at descendente.
	List() ([]*entity.ProfitShare, error)
}
