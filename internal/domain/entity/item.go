package entity

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// Item representa un ítem del inventario con sus totales acumulados (agregado).
// Store, Release y TotalCount solo los modifica el coordinador del libro de movimientos.
type Item struct {
	ID         string
	Name       string // único
	Store      int64  // entradas acumuladas
	Release    int64  // salidas acumuladas
	TotalCount int64  // Store - Release, nunca negativo tras un commit
	StaffID    string // usuario que registró el ítem
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Aggregate devuelve los totales del ítem como valor de dominio.
func (i *Item) Aggregate() inventory.Aggregate {
	return inventory.Aggregate{Store: i.Store, Release: i.Release, TotalCount: i.TotalCount}
}

// SetAggregate copia los totales calculados sobre el ítem.
func (i *Item) SetAggregate(a inventory.Aggregate) {
	i.Store = a.Store
	i.Release = a.Release
	i.TotalCount = a.TotalCount
}
