// Package pdf implementa la generación del acta de reparto mensual de
// utilidades.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Acta de Reparto  │  Mes/Año + fecha de ejecución   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: utilidad total / monto por socio (x2)             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Cliente | Utilidad de la orden              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de inmutabilidad de las órdenes incluidas  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/lotes-api/internal/application/profitshare"
	"github.com/jhoicas/lotes-api/internal/domain/entity"
)

var _ profitshare.SharePDFGenerator = (*MarotoShareGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var monthNames = [...]string{"", "Enero", "Febrero", "Marzo", "Abril", "Mayo",
	"Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}

// MarotoShareGenerator genera el acta de reparto con Maroto v2.
type MarotoShareGenerator struct{}

// NewMarotoShareGenerator construye el generador.
func NewMarotoShareGenerator() *MarotoShareGenerator { return &MarotoShareGenerator{} }

// GenerateSharePDF genera el PDF del acta y devuelve sus bytes.
func (g *MarotoShareGenerator) GenerateSharePDF(_ context.Context, share *entity.ProfitShare, orders []*entity.SalesOrder) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta de Reparto de Utilidades", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(share))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(share))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableOrderRows(orders) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(share))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acta: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: título (izq) y mes + fecha de ejecución (der).
func headerRow(share *entity.ProfitShare) core.Row {
	period := fmt.Sprintf("%s %d", monthNames[share.Month], share.Year)
	return row.New(18).Add(
		col.New(7).Add(
			text.New("ACTA DE REPARTO DE UTILIDADES", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Lotes-api — inventario por lotes", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(period, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 3,
			}),
			text.New("Ejecutado: "+share.ExecutedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

// summaryRow: utilidad total y monto por cada uno de los dos socios.
func summaryRow(share *entity.ProfitShare) core.Row {
	return row.New(14).Add(
		col.New(6).Add(
			text.New("UTILIDAD TOTAL DEL MES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("$ "+share.TotalProfit.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 12, Top: 6,
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("MONTO POR SOCIO (%d socios)", entity.OwnerCount), props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1, Align: align.Right,
			}),
			text.New("$ "+share.AmountPerOwner.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 12, Top: 6, Align: align.Right,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de órdenes incluidas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Cliente", 6, align.Left),
		h("Utilidad", 3, align.Right),
	)
}

// tableOrderRows: una fila por orden bloqueada en el reparto.
func tableOrderRows(orders []*entity.SalesOrder) []core.Row {
	result := make([]core.Row, 0, len(orders))
	for _, o := range orders {
		customer := o.CustomerName
		if customer == "" {
			customer = "—"
		}
		result = append(result, row.New(7).Add(
			col.New(3).Add(text.New(
				o.OrderDate.Format("02/01/2006"),
				props.Text{Size: 8, Top: 1},
			)),
			col.New(6).Add(text.New(customer, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(
				"$ "+o.TotalProfit.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1},
			)),
		))
	}
	return result
}

// footerRow: leyenda de inmutabilidad.
func footerRow(share *entity.ProfitShare) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf(
				"Las órdenes incluidas en este reparto quedaron bloqueadas de forma permanente el %s y no admiten modificación ni eliminación.",
				share.ExecutedAt.Format("02/01/2006"),
			), props.Text{Size: 7, Color: colorGray, Top: 2}),
		),
	)
}
