package inventory_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// memState estado completo del libro en memoria. Las transacciones trabajan sobre una copia.
type memState struct {
	items     map[string]entity.Item
	movements map[string]entity.MovementEntry
	movOrder  []string
	history   map[string]entity.HistoryRecord
	histOrder []string
}

func newMemState() *memState {
	return &memState{
		items:     map[string]entity.Item{},
		movements: map[string]entity.MovementEntry{},
		history:   map[string]entity.HistoryRecord{},
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = v
	}
	for k, v := range s.history {
		c.history[k] = v
	}
	c.movOrder = append([]string(nil), s.movOrder...)
	c.histOrder = append([]string(nil), s.histOrder...)
	return c
}

// memStore implementa TxRunner y los repositorios de lectura. Run serializa las transacciones
// con un mutex (equivale al bloqueo de fila) y solo publica la copia si fn no falla.
type memStore struct {
	mu sync.Mutex
	st *memState

	// failAppend simula un fallo del historial después de actualizar el agregado.
	failAppend error
	runs       int
}

func newMemStore() *memStore { return &memStore{st: newMemState()} }

func (s *memStore) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	historyRepo repository.HistoryRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	work := s.st.clone()
	v := &memView{state: func() *memState { return work }, lock: func() func() { return func() {} }, store: s}
	if err := fn(memItems{v}, memMovements{v}, memHistory{v}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *memStore) view() *memView {
	return &memView{
		state: func() *memState { return s.st },
		lock: func() func() {
			s.mu.Lock()
			return s.mu.Unlock
		},
		store: s,
	}
}

func (s *memStore) itemRepo() repository.ItemRepository         { return memItems{s.view()} }
func (s *memStore) movementRepo() repository.MovementRepository { return memMovements{s.view()} }
func (s *memStore) historyRepo() repository.HistoryRepository   { return memHistory{s.view()} }

// seedItem registra un ítem con totales en cero fuera del coordinador.
func (s *memStore) seedItem(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.items[id] = entity.Item{ID: id, Name: name, StaffID: "admin"}
}

// item devuelve una copia del ítem confirmado.
func (s *memStore) item(id string) entity.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.items[id]
}

// snapshot devuelve una copia de todo el estado confirmado.
func (s *memStore) snapshot() *memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

type memView struct {
	state func() *memState
	lock  func() func()
	store *memStore
}

// ── items ─────────────────────────────────────────────────────────────────────

type memItems struct{ v *memView }

func (r memItems) Create(_ context.Context, item *entity.Item) error {
	defer r.v.lock()()
	st := r.v.state()
	for _, it := range st.items {
		if strings.EqualFold(it.Name, item.Name) {
			return domain.ErrDuplicate
		}
	}
	st.items[item.ID] = *item
	return nil
}

func (r memItems) GetByID(_ context.Context, id string) (*entity.Item, error) {
	defer r.v.lock()()
	it, ok := r.v.state().items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r memItems) GetByName(_ context.Context, name string) (*entity.Item, error) {
	defer r.v.lock()()
	for _, it := range r.v.state().items {
		if it.Name == name {
			it := it
			return &it, nil
		}
	}
	return nil, nil
}

func (r memItems) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r memItems) UpdateAggregate(_ context.Context, item *entity.Item) error {
	defer r.v.lock()()
	st := r.v.state()
	cur, ok := st.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Store, cur.Release, cur.TotalCount = item.Store, item.Release, item.TotalCount
	cur.ModifiedAt = item.ModifiedAt
	st.items[item.ID] = cur
	return nil
}

func (r memItems) List(_ context.Context, search string, limit, offset int) ([]*entity.Item, error) {
	defer r.v.lock()()
	var out []*entity.Item
	for _, it := range r.v.state().items {
		if search == "" || strings.Contains(strings.ToLower(it.Name), strings.ToLower(search)) {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r memItems) Delete(_ context.Context, id string) error {
	defer r.v.lock()()
	delete(r.v.state().items, id)
	return nil
}

// ── movements ─────────────────────────────────────────────────────────────────

type memMovements struct{ v *memView }

func (r memMovements) Create(_ context.Context, entry *entity.MovementEntry) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.items[entry.ItemID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := st.movements[entry.ID]; ok {
		return domain.ErrDuplicate
	}
	st.movements[entry.ID] = *entry
	st.movOrder = append(st.movOrder, entry.ID)
	return nil
}

func (r memMovements) GetByID(_ context.Context, id string) (*entity.MovementEntry, error) {
	defer r.v.lock()()
	m, ok := r.v.state().movements[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r memMovements) GetForUpdate(ctx context.Context, id string) (*entity.MovementEntry, error) {
	return r.GetByID(ctx, id)
}

func (r memMovements) Update(_ context.Context, entry *entity.MovementEntry) error {
	defer r.v.lock()()
	st := r.v.state()
	cur, ok := st.movements[entry.ID]
	if !ok {
		return domain.ErrNotFound
	}
	staff, created := cur.StaffID, cur.CreatedAt
	cur = *entry
	cur.StaffID, cur.CreatedAt = staff, created
	st.movements[entry.ID] = cur
	return nil
}

func (r memMovements) Delete(_ context.Context, id string) error {
	defer r.v.lock()()
	st := r.v.state()
	if _, ok := st.movements[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.movements, id)
	for i, mid := range st.movOrder {
		if mid == id {
			st.movOrder = append(st.movOrder[:i:i], st.movOrder[i+1:]...)
			break
		}
	}
	for k, h := range st.history {
		if h.MovementID == id {
			h.MovementID = ""
			st.history[k] = h
		}
	}
	return nil
}

func (r memMovements) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.MovementEntry, error) {
	defer r.v.lock()()
	st := r.v.state()
	var out []*entity.MovementEntry
	for _, id := range st.movOrder {
		m := st.movements[id]
		if m.ItemID == itemID {
			out = append(out, &m)
		}
	}
	return page(out, limit, offset), nil
}

func (r memMovements) CountByItem(_ context.Context, itemID string) (int64, error) {
	defer r.v.lock()()
	var n int64
	for _, m := range r.v.state().movements {
		if m.ItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (r memMovements) Stats(_ context.Context) (repository.MovementStats, error) {
	defer r.v.lock()()
	var s repository.MovementStats
	for _, m := range r.v.state().movements {
		s.Count++
		switch m.Classification {
		case inventory.ClassificationStore:
			s.StoreCount++
			s.StoreValue += m.TotalPrice.IntPart()
		case inventory.ClassificationRelease:
			s.ReleaseCount++
			s.ReleaseValue += m.TotalPrice.IntPart()
		}
	}
	return s, nil
}

// ── history ───────────────────────────────────────────────────────────────────

type memHistory struct{ v *memView }

func (r memHistory) Append(_ context.Context, record *entity.HistoryRecord) error {
	defer r.v.lock()()
	if r.v.store.failAppend != nil {
		return r.v.store.failAppend
	}
	st := r.v.state()
	var seq int64
	for _, h := range st.history {
		if h.MovementID == record.MovementID && h.Sequence > seq {
			seq = h.Sequence
		}
	}
	record.Sequence = seq + 1
	st.history[record.ID] = *record
	st.histOrder = append(st.histOrder, record.ID)
	return nil
}

func (r memHistory) GetByID(_ context.Context, id string) (*entity.HistoryRecord, error) {
	defer r.v.lock()()
	h, ok := r.v.state().history[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r memHistory) Latest(_ context.Context, movementID string) (*entity.HistoryRecord, error) {
	defer r.v.lock()()
	var latest *entity.HistoryRecord
	for _, h := range r.v.state().history {
		if h.MovementID == movementID && (latest == nil || h.Sequence > latest.Sequence) {
			h := h
			latest = &h
		}
	}
	return latest, nil
}

func (r memHistory) ListByMovement(_ context.Context, movementID string) ([]*entity.HistoryRecord, error) {
	return r.list(func(h entity.HistoryRecord) bool { return h.MovementID == movementID })
}

func (r memHistory) ListByItem(_ context.Context, itemID string) ([]*entity.HistoryRecord, error) {
	return r.list(func(h entity.HistoryRecord) bool { return h.ItemID == itemID })
}

func (r memHistory) list(match func(entity.HistoryRecord) bool) ([]*entity.HistoryRecord, error) {
	defer r.v.lock()()
	st := r.v.state()
	var out []*entity.HistoryRecord
	for _, id := range st.histOrder {
		h := st.history[id]
		if match(h) {
			out = append(out, &h)
		}
	}
	return out, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func price(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
