// Package pdf genera la tarjeta de existencias (kardex) de un ítem.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del ítem + ID  │  KARDEX + Fecha de corte   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Entradas / Salidas / Existencia                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Cant | P.Unit | Total | Saldo | Memo  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el ID del ítem + leyenda                     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	appinventory "github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 20, Blue: 20}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appinventory.KardexPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa inventory.KardexPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	now func() time.Time
}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{now: time.Now} }

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateKardexPDF(
	_ context.Context,
	item *entity.Item,
	rows []appinventory.KardexRow,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+item.Name, true).
		WithAuthor("inventario-ledger", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(item, g.now()))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(item, len(rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableDetailRows(rows) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(item))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del ítem (izq) y fecha de corte (der).
func headerRow(item *entity.Item, at time.Time) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(item.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+item.ID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("KARDEX DE EXISTENCIAS", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Corte: "+at.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// summaryRow: agregado persistido del ítem.
func summaryRow(item *entity.Item, movements int) core.Row {
	cell := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(value, props.Text{Size: 11, Top: 6}),
		)
	}
	return row.New(14).Add(
		cell("ENTRADAS", formatQty(item.Store)),
		cell("SALIDAS", formatQty(item.Release)),
		cell("EXISTENCIA", formatQty(item.TotalCount)),
		cell("MOVIMIENTOS", strconv.Itoa(movements)),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Tipo", 1, align.Center),
		h("Cant.", 1, align.Right),
		h("Precio Unit.", 2, align.Right),
		h("Total", 2, align.Right),
		h("Saldo", 1, align.Right),
		h("Memo", 3, align.Left),
	)
}

// tableDetailRows: una fila por movimiento vigente con el saldo acumulado.
func tableDetailRows(rows []appinventory.KardexRow) []core.Row {
	result := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		m := r.Movement
		balanceStyle := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if r.Balance < 0 {
			balanceStyle.Color = colorRed
		}
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(
				m.CreatedAt.Format("02/01/2006"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				classificationLabel(m.Classification),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				formatQty(m.Quantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(m.UnitPrice.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				"$"+formatMoney(m.TotalPrice.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(formatQty(r.Balance), balanceStyle)),
			col.New(3).Add(text.New(
				nonEmpty(m.Memo, "—"),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1, Color: colorGray},
			)),
		))
	}
	return result
}

// footerRow: QR con el ID del ítem para ubicarlo en bodega.
func footerRow(item *entity.Item) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(item.ID, props.Rect{
			Percent: 90,
			Center:  true,
		})),
		col.New(9).Add(
			text.New("Saldo calculado con los movimientos vigentes en orden de registro.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("El historial de ediciones y bajas se consulta por movimiento.", props.Text{
				Size: 8, Top: 10, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func classificationLabel(c inventory.Classification) string {
	switch c {
	case inventory.ClassificationStore:
		return "Entrada"
	case inventory.ClassificationRelease:
		return "Salida"
	}
	return string(c)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatQty(n int64) string {
	if n < 0 {
		return "-" + formatMoney(strconv.FormatInt(-n, 10))
	}
	return formatMoney(strconv.FormatInt(n, 10))
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
