// Package inventory contiene la aritmética del agregado de existencias (servicio de dominio puro).
//
// Un Aggregate es un valor: Apply y Reverse devuelven el nuevo estado y nunca mutan el receptor,
// de modo que el llamador decide cuándo persistirlo (dentro de la transacción del coordinador).
package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Classification tipo de movimiento: entrada (STORE) o salida (RELEASE).
type Classification string

const (
	ClassificationStore   Classification = "STORE"   // entrada
	ClassificationRelease Classification = "RELEASE" // salida
)

// Valid indica si la clasificación es una de las admitidas.
func (c Classification) Valid() bool {
	return c == ClassificationStore || c == ClassificationRelease
}

// ParseClassification normaliza y valida una clasificación recibida del exterior.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if !c.Valid() {
		return "", fmt.Errorf("clasificación %q: %w", s, domain.ErrInvalidInput)
	}
	return c, nil
}

// Sign dirección del efecto: +1 aplica, -1 revierte.
type Sign int

const (
	SignApply   Sign = 1
	SignReverse Sign = -1
)

// Effect ajuste que un movimiento produce sobre el agregado de un ítem.
type Effect struct {
	Classification Classification
	Quantity       int64
}

// Aggregate totales acumulados de un ítem.
// Invariante tras cada commit: TotalCount == Store - Release y TotalCount >= 0.
type Aggregate struct {
	Store      int64
	Release    int64
	TotalCount int64
}

// Apply agrega el efecto y valida el piso (TotalCount >= 0).
// Si el resultado es negativo devuelve domain.ErrStockUnderflow; si un contador no cabe en int64,
// domain.ErrInvalidInput. En ambos casos el agregado original queda sin cambios.
func (a Aggregate) Apply(e Effect) (Aggregate, error) {
	if err := e.Validate(); err != nil {
		return a, err
	}
	switch e.Classification {
	case ClassificationStore:
		if a.Store > math.MaxInt64-e.Quantity || a.TotalCount > math.MaxInt64-e.Quantity {
			return a, fmt.Errorf("entrada de %d desborda el agregado: %w", e.Quantity, domain.ErrInvalidInput)
		}
	case ClassificationRelease:
		if a.Release > math.MaxInt64-e.Quantity {
			return a, fmt.Errorf("salida de %d desborda el agregado: %w", e.Quantity, domain.ErrInvalidInput)
		}
	}
	next := a.shift(e, SignApply)
	if next.TotalCount < 0 {
		return a, domain.ErrStockUnderflow
	}
	return next, nil
}

// Reverse deshace un efecto aplicado previamente. No valida el piso ni el rango: es la inversa
// exacta de un Apply que ya pasó ambas validaciones, y el piso se valida al aplicar el efecto siguiente.
func (a Aggregate) Reverse(e Effect) Aggregate {
	return a.shift(e, SignReverse)
}

// Add suma el efecto sin validar el piso. Solo para recalcular saldos (kardex, conciliación).
func (a Aggregate) Add(e Effect) Aggregate {
	return a.shift(e, SignApply)
}

// Consistent verifica el invariante completo del agregado.
func (a Aggregate) Consistent() bool {
	return a.TotalCount == a.Store-a.Release && a.TotalCount >= 0
}

func (a Aggregate) shift(e Effect, sign Sign) Aggregate {
	q := e.Quantity * int64(sign)
	switch e.Classification {
	case ClassificationStore:
		a.Store += q
		a.TotalCount += q
	case ClassificationRelease:
		a.Release += q
		a.TotalCount -= q
	}
	return a
}

// Shift expresa el contrato apply(item, classification, quantity, sign):
// con SignApply valida el piso, con SignReverse no.
func Shift(a Aggregate, e Effect, sign Sign) (Aggregate, error) {
	switch sign {
	case SignApply:
		return a.Apply(e)
	case SignReverse:
		return a.Reverse(e), nil
	}
	return a, fmt.Errorf("signo %d: %w", sign, domain.ErrInvalidInput)
}

// Validate comprueba los campos de un efecto antes de aplicarlo.
func (e Effect) Validate() error {
	if !e.Classification.Valid() {
		return fmt.Errorf("clasificación %q: %w", e.Classification, domain.ErrInvalidInput)
	}
	if e.Quantity < 0 {
		return fmt.Errorf("cantidad negativa: %w", domain.ErrInvalidInput)
	}
	return nil
}
