package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"gomarketplace_ingest/internal/catalog/models"
	"gomarketplace_ingest/internal/catalog/storage"
	"gomarketplace_ingest/pkg/logger"
)

func quietLogger() *logger.BaseLogger {
	l := logger.NewLogger(nil, "[test]")
	l.SetWriter(io.Discard)
	return l
}

type attrKey struct {
	owner int64
	name  string
}

type catalogState struct {
	products           map[int64]models.Product
	productAttributes  map[attrKey]models.Attribute
	variations         map[int64]models.Variation
	variationAttribute map[attrKey]models.Attribute
	images             map[models.VariationImage]struct{}
}

func newCatalogState() *catalogState {
	return &catalogState{
		products:           map[int64]models.Product{},
		productAttributes:  map[attrKey]models.Attribute{},
		variations:         map[int64]models.Variation{},
		variationAttribute: map[attrKey]models.Attribute{},
		images:             map[models.VariationImage]struct{}{},
	}
}

func (s *catalogState) clone() *catalogState {
	c := newCatalogState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.productAttributes {
		c.productAttributes[k] = v
	}
	for k, v := range s.variations {
		c.variations[k] = v
	}
	for k, v := range s.variationAttribute {
		c.variationAttribute[k] = v
	}
	for k := range s.images {
		c.images[k] = struct{}{}
	}
	return c
}

// memStore keys rows by the same natural keys as the Postgres schema.
type memStore struct {
	mu            sync.Mutex
	state         *catalogState
	failVariation int64
	commits       int
}

func newMemStore() *memStore {
	return &memStore{state: newCatalogState()}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx storage.CatalogTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	staged := &memTx{state: m.state.clone(), failVariation: m.failVariation}
	if err := fn(staged); err != nil {
		return err
	}
	m.state = staged.state
	m.commits++
	return nil
}

func (m *memStore) snapshot() *catalogState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

type memTx struct {
	state         *catalogState
	failVariation int64
}

func (t *memTx) UpsertProduct(ctx context.Context, p models.Product) error {
	t.state.products[p.ID] = p
	return nil
}

func (t *memTx) UpsertProductAttribute(ctx context.Context, a models.Attribute) error {
	if _, ok := t.state.products[a.OwnerID]; !ok {
		return fmt.Errorf("product %d does not exist", a.OwnerID)
	}
	t.state.productAttributes[attrKey{a.OwnerID, a.Name}] = a
	return nil
}

func (t *memTx) UpsertVariation(ctx context.Context, v models.Variation) error {
	if v.ID == t.failVariation {
		return errors.New("constraint violation")
	}
	if _, ok := t.state.products[v.ProductID]; !ok {
		return fmt.Errorf("product %d does not exist", v.ProductID)
	}
	t.state.variations[v.ID] = v
	return nil
}

func (t *memTx) UpsertVariationAttribute(ctx context.Context, a models.Attribute) error {
	if _, ok := t.state.variations[a.OwnerID]; !ok {
		return fmt.Errorf("variation %d does not exist", a.OwnerID)
	}
	t.state.variationAttribute[attrKey{a.OwnerID, a.Name}] = a
	return nil
}

func (t *memTx) InsertVariationImage(ctx context.Context, img models.VariationImage) error {
	if _, ok := t.state.variations[img.VariationID]; !ok {
		return fmt.Errorf("variation %d does not exist", img.VariationID)
	}
	t.state.images[img] = struct{}{}
	return nil
}

type fakePrices struct {
	byProduct map[int64][]models.VariationPrice
	calls     [][]int64
}

func (f *fakePrices) BulkPrices(ctx context.Context, ids []int64) map[int64][]models.VariationPrice {
	f.calls = append(f.calls, ids)
	out := map[int64][]models.VariationPrice{}
	for _, id := range ids {
		if v, ok := f.byProduct[id]; ok {
			out[id] = v
		}
	}
	return out
}

type saved struct {
	cursor string
	lastID int64
}

type fakeCheckpoints struct {
	mu        sync.Mutex
	active    *models.CheckpointRecord
	saves     []saved
	failSaves int
	doneCalls int
}

func (f *fakeCheckpoints) LoadActive(ctx context.Context) (*models.CheckpointRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

func (f *fakeCheckpoints) Save(ctx context.Context, cursor models.PageCursor, lastProcessedID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaves > 0 {
		f.failSaves--
		return errors.New("connection reset")
	}
	f.saves = append(f.saves, saved{cursor: models.CursorString(cursor), lastID: lastProcessedID})
	f.active = &models.CheckpointRecord{Cursor: cursor, LastProcessedID: lastProcessedID, Status: models.CheckpointActive}
	return nil
}

func (f *fakeCheckpoints) MarkDone(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doneCalls++
	f.active = nil
	return nil
}

// scriptedSource returns pages in call order; after the script ends it returns empty pages.
type scriptedSource struct {
	pages     []models.PageResult
	requested []string
	onCall    func(call int)
}

func (s *scriptedSource) ListProducts(ctx context.Context, cursor models.PageCursor) models.PageResult {
	call := len(s.requested)
	s.requested = append(s.requested, models.CursorString(cursor))
	if s.onCall != nil {
		s.onCall(call)
	}
	if call < len(s.pages) {
		return s.pages[call]
	}
	return models.PageResult{Outcome: models.OutcomeEmpty}
}

type recordingWriter struct {
	written []int64
	failIDs map[int64]bool
}

func (w *recordingWriter) Write(ctx context.Context, p models.RawProduct) error {
	w.written = append(w.written, p.ID)
	if w.failIDs[p.ID] {
		return errors.New("write failed")
	}
	return nil
}

func itemsPage(next string, ids ...int64) models.PageResult {
	page := models.PageResult{Outcome: models.OutcomeItems}
	for _, id := range ids {
		page.Items = append(page.Items, models.RawProduct{ID: id, Name: fmt.Sprintf("product %d", id)})
	}
	if next != "" {
		page.Next = models.NewCursor(next)
	}
	return page
}

func strPtr(s string) *string {
	return &s
}

func intPtr(n int) *int {
	return &n
}
