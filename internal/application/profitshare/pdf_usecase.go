package profitshare

import (
	"context"
	"fmt"

	"github.com/jhoicas/lotes-api/internal/domain"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
	"github.com/jhoicas/lotes-api/internal/domain/repository"
)

// ordersPageSize tamaño de página al leer las órdenes del acta.
const ordersPageSize = 500

// SharePDFGenerator genera el acta de reparto (PDF) a partir del reparto y
// las órdenes que incluyó.
type SharePDFGenerator interface {
	GenerateSharePDF(ctx context.Context, share *entity.ProfitShare, orders []*entity.SalesOrder) ([]byte, error)
}

// PDFUseCase genera el acta de reparto mensual: totales, monto por socio y
// las órdenes bloqueadas por ese reparto. Solo lectura, no muta estado.
type PDFUseCase struct {
	shareRepo repository.ProfitShareRepository
	orderRepo repository.SalesOrderRepository
	shareUC   *ShareUseCase
	generator SharePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(shareRepo repository.ProfitShareRepository, orderRepo repository.SalesOrderRepository, shareUC *ShareUseCase, generator SharePDFGenerator) *PDFUseCase {
	return &PDFUseCase{shareRepo: shareRepo, orderRepo: orderRepo, shareUC: shareUC, generator: generator}
}

// DownloadSharePDF genera el PDF del acta y un nombre de archivo sugerido.
func (uc *PDFUseCase) DownloadSharePDF(ctx context.Context, shareID string) (pdfBytes []byte, filename string, err error) {
	share, err := uc.shareRepo.GetByID(shareID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener reparto: %w", err)
	}
	if share == nil {
		return nil, "", domain.ErrNotFound
	}

	// Las órdenes del acta son las bloqueadas dentro de la ventana del mes,
	// leídas por páginas: un mes con más ventas que el tamaño de página no
	// se trunca.
	start, end := uc.shareUC.MonthWindow(share.Month, share.Year)
	locked := true
	var orders []*entity.SalesOrder
	for offset := 0; ; offset += ordersPageSize {
		page, err := uc.orderRepo.List(repository.OrderFilter{
			StartDate: &start,
			EndDate:   &end,
			Locked:    &locked,
			Limit:     ordersPageSize,
			Offset:    offset,
		})
		if err != nil {
			return nil, "", fmt.Errorf("pdf: listar órdenes del reparto: %w", err)
		}
		orders = append(orders, page...)
		if len(page) < ordersPageSize {
			break
		}
	}

	pdfBytes, err = uc.generator.GenerateSharePDF(ctx, share, orders)
	if err != nil {
		return nil, "", err
	}
	filename = fmt.Sprintf("reparto-%04d-%02d.pdf", share.Year, share.Month)
	return pdfBytes, filename, nil
}
