// Package memory implementación en memoria de todos los repositorios y del
// TxRunner, para tests y modo demo. Run trabaja sobre una copia del estado y la
// publica solo si fn termina sin error, así el rollback es descartar la copia.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-ledger/internal/application/ports"
	"github.com/jhoicas/pos-ledger/internal/domain"
	"github.com/jhoicas/pos-ledger/internal/domain/entity"
	"github.com/jhoicas/pos-ledger/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

// Store estado compartido protegido por mu. Las transacciones se serializan.
type Store struct {
	mu sync.Mutex
	st *state

	// conflictos de número inyectados en los próximos Create (tests de reintento)
	pendingConflicts int
}

type state struct {
	products    map[string]entity.Product
	documents   map[string]entity.Document
	docOrder    []string
	lines       map[string][]entity.LineItem
	ledger      []entity.LedgerEntry
	ledgerSeq   int64
	returns     map[string]entity.ReturnDocument
	returnOrder []string
	returnLines map[string][]entity.ReturnLine
	history     []entity.EditHistoryRecord
	series      map[string]entity.NumberSeries
	settings    map[string]entity.TenantSettings
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: &state{
		products:    make(map[string]entity.Product),
		documents:   make(map[string]entity.Document),
		lines:       make(map[string][]entity.LineItem),
		returns:     make(map[string]entity.ReturnDocument),
		returnLines: make(map[string][]entity.ReturnLine),
		series:      make(map[string]entity.NumberSeries),
		settings:    make(map[string]entity.TenantSettings),
	}}
}

func (s *state) clone() *state {
	c := &state{
		products:    make(map[string]entity.Product, len(s.products)),
		documents:   make(map[string]entity.Document, len(s.documents)),
		docOrder:    append([]string(nil), s.docOrder...),
		lines:       make(map[string][]entity.LineItem, len(s.lines)),
		ledger:      append([]entity.LedgerEntry(nil), s.ledger...),
		ledgerSeq:   s.ledgerSeq,
		returns:     make(map[string]entity.ReturnDocument, len(s.returns)),
		returnOrder: append([]string(nil), s.returnOrder...),
		returnLines: make(map[string][]entity.ReturnLine, len(s.returnLines)),
		history:     append([]entity.EditHistoryRecord(nil), s.history...),
		series:      make(map[string]entity.NumberSeries, len(s.series)),
		settings:    make(map[string]entity.TenantSettings, len(s.settings)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.documents {
		c.documents[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]entity.LineItem(nil), v...)
	}
	for k, v := range s.returns {
		c.returns[k] = v
	}
	for k, v := range s.returnLines {
		c.returnLines[k] = append([]entity.ReturnLine(nil), v...)
	}
	for k, v := range s.series {
		c.series[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	return c
}

// Run ejecuta fn sobre una copia del estado y la publica si no hay error.
func (s *Store) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.Storage("begin transaction", err)
	}
	work := s.st.clone()
	if err := fn(s.repos(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return domain.Storage("commit transaction", err)
	}
	s.st = work
	return nil
}

// Repos repositorios fuera de transacción (cada llamada toma el lock).
func (s *Store) Repos() repository.Repos {
	return s.repos(nil)
}

func (s *Store) repos(tx *state) repository.Repos {
	a := access{s: s, tx: tx}
	return repository.Repos{
		Products:    productRepo{a},
		Ledger:      ledgerRepo{a},
		Documents:   documentRepo{a},
		Returns:     returnRepo{a},
		EditHistory: historyRepo{a},
		Series:      seriesRepo{a},
		Settings:    settingsRepo{a},
	}
}

// InjectNumberConflicts hace que los próximos n Create de documentos o
// devoluciones fallen con domain.ErrDuplicateNumber.
func (s *Store) InjectNumberConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingConflicts = n
}

// takeConflict se llama con mu tomado (dentro de Run) o desde view.
func (s *Store) takeConflict() bool {
	if s.pendingConflicts > 0 {
		s.pendingConflicts--
		return true
	}
	return false
}

type access struct {
	s  *Store
	tx *state
}

func (a access) view(fn func(st *state) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

func key(tenantID, id string) string { return tenantID + "/" + id }

// ── Seed e inspección ─────────────────────────────────────────────────────────

// AddProduct inserta o reemplaza un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.products[key(p.TenantID, p.ID)] = p
}

// SetSettings guarda la configuración del tenant.
func (s *Store) SetSettings(ts entity.TenantSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.settings[ts.TenantID] = ts
}

// SetSeries guarda una serie de numeración.
func (s *Store) SetSeries(ns entity.NumberSeries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.series[key(ns.TenantID, ns.Series)] = ns
}

// Stock devuelve el stock actual del producto (cero si no existe).
func (s *Store) Stock(tenantID, productID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.products[key(tenantID, productID)].StockQuantity
}

// LedgerLen cantidad total de asientos.
func (s *Store) LedgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.ledger)
}

// DocumentCount cantidad total de documentos.
func (s *Store) DocumentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.documents)
}

// ReturnCount cantidad total de devoluciones.
func (s *Store) ReturnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.st.returns)
}

// ── Products ──────────────────────────────────────────────────────────────────

type productRepo struct{ access }

func (r productRepo) GetByID(_ context.Context, tenantID, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.view(func(st *state) error {
		if p, ok := st.products[key(tenantID, id)]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.view(func(st *state) error {
		if _, ok := st.products[key(p.TenantID, p.ID)]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if p.SKU != "" && other.TenantID == p.TenantID && other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[key(p.TenantID, p.ID)] = *p
		return nil
	})
}

func (r productRepo) List(_ context.Context, tenantID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.view(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	if offset >= len(out) {
		return nil, err
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, err
}

func (r productRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.Product, error) {
	return r.GetByID(ctx, tenantID, id)
}

func (r productRepo) UpdateStock(_ context.Context, tenantID, id string, quantity decimal.Decimal) error {
	return r.view(func(st *state) error {
		p, ok := st.products[key(tenantID, id)]
		if !ok {
			return domain.NotFound("product", id)
		}
		p.StockQuantity = quantity
		st.products[key(tenantID, id)] = p
		return nil
	})
}

// ── Ledger ────────────────────────────────────────────────────────────────────

type ledgerRepo struct{ access }

func (r ledgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	return r.view(func(st *state) error {
		st.ledgerSeq++
		e.Seq = st.ledgerSeq
		st.ledger = append(st.ledger, *e)
		return nil
	})
}

func (r ledgerRepo) ListByProduct(_ context.Context, tenantID, productID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.view(func(st *state) error {
		for i := range st.ledger {
			e := st.ledger[i]
			if e.TenantID == tenantID && e.ProductID == productID {
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

func (r ledgerRepo) ListByReference(_ context.Context, tenantID, referenceType, referenceID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.view(func(st *state) error {
		for i := range st.ledger {
			e := st.ledger[i]
			if e.TenantID == tenantID && e.ReferenceType == referenceType && e.ReferenceID == referenceID {
				out = append(out, &e)
			}
		}
		return nil
	})
	return out, err
}

// ── Documents ─────────────────────────────────────────────────────────────────

type documentRepo struct{ access }

func (r documentRepo) Create(_ context.Context, doc *entity.Document) error {
	return r.view(func(st *state) error {
		if r.s.takeConflict() {
			return domain.ErrDuplicateNumber
		}
		for _, d := range st.documents {
			if d.TenantID == doc.TenantID && d.Type == doc.Type && d.Number == doc.Number {
				return domain.ErrDuplicateNumber
			}
		}
		st.documents[key(doc.TenantID, doc.ID)] = *doc
		st.docOrder = append(st.docOrder, key(doc.TenantID, doc.ID))
		return nil
	})
}

func (r documentRepo) CreateLine(_ context.Context, line *entity.LineItem) error {
	return r.view(func(st *state) error {
		k := key(line.TenantID, line.DocumentID)
		if _, ok := st.documents[k]; !ok {
			return domain.NotFound("document", line.DocumentID)
		}
		st.lines[k] = append(st.lines[k], *line)
		return nil
	})
}

func (r documentRepo) GetByID(_ context.Context, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error) {
	var out *entity.Document
	err := r.view(func(st *state) error {
		if d, ok := st.documents[key(tenantID, id)]; ok && d.Type == docType {
			out = &d
		}
		return nil
	})
	return out, err
}

func (r documentRepo) GetForUpdate(ctx context.Context, tenantID string, docType entity.DocumentType, id string) (*entity.Document, error) {
	return r.GetByID(ctx, tenantID, docType, id)
}

func (r documentRepo) Update(_ context.Context, doc *entity.Document) error {
	return r.view(func(st *state) error {
		k := key(doc.TenantID, doc.ID)
		if _, ok := st.documents[k]; !ok {
			return domain.NotFound("document", doc.ID)
		}
		st.documents[k] = *doc
		return nil
	})
}

func (r documentRepo) ListLines(_ context.Context, tenantID, documentID string) ([]*entity.LineItem, error) {
	var out []*entity.LineItem
	err := r.view(func(st *state) error {
		src := st.lines[key(tenantID, documentID)]
		for i := range src {
			l := src[i]
			out = append(out, &l)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

func (r documentRepo) DeleteLines(_ context.Context, tenantID, documentID string) error {
	return r.view(func(st *state) error {
		delete(st.lines, key(tenantID, documentID))
		return nil
	})
}

func (r documentRepo) NumberExists(_ context.Context, tenantID string, docType entity.DocumentType, number string) (bool, error) {
	found := false
	err := r.view(func(st *state) error {
		for _, d := range st.documents {
			if d.TenantID == tenantID && d.Type == docType && d.Number == number {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r documentRepo) MaxNumberWithPrefix(_ context.Context, tenantID string, docType entity.DocumentType, prefix string) (string, error) {
	var numbers []string
	err := r.view(func(st *state) error {
		for _, d := range st.documents {
			if d.TenantID == tenantID && d.Type == docType {
				numbers = append(numbers, d.Number)
			}
		}
		return nil
	})
	return maxWithPrefix(numbers, prefix), err
}

// maxWithPrefix mayor número con el prefijo; compara largo y luego texto para
// que 10000 quede por encima de 9999.
func maxWithPrefix(numbers []string, prefix string) string {
	best := ""
	for _, n := range numbers {
		if len(n) < len(prefix) || n[:len(prefix)] != prefix {
			continue
		}
		if len(n) > len(best) || (len(n) == len(best) && n > best) {
			best = n
		}
	}
	return best
}

// ── Returns ───────────────────────────────────────────────────────────────────

type returnRepo struct{ access }

func (r returnRepo) Create(_ context.Context, ret *entity.ReturnDocument) error {
	return r.view(func(st *state) error {
		if r.s.takeConflict() {
			return domain.ErrDuplicateNumber
		}
		for _, x := range st.returns {
			if x.TenantID == ret.TenantID && x.Type == ret.Type && x.Number == ret.Number {
				return domain.ErrDuplicateNumber
			}
		}
		k := key(ret.TenantID, ret.ID)
		st.returns[k] = *ret
		st.returnOrder = append(st.returnOrder, k)
		return nil
	})
}

func (r returnRepo) CreateLine(_ context.Context, line *entity.ReturnLine) error {
	return r.view(func(st *state) error {
		var tenantID string
		for _, x := range st.returns {
			if x.ID == line.ReturnID {
				tenantID = x.TenantID
				break
			}
		}
		if tenantID == "" {
			return domain.NotFound("return", line.ReturnID)
		}
		k := key(tenantID, line.ReturnID)
		st.returnLines[k] = append(st.returnLines[k], *line)
		return nil
	})
}

func (r returnRepo) GetByID(_ context.Context, tenantID, id string) (*entity.ReturnDocument, error) {
	var out *entity.ReturnDocument
	err := r.view(func(st *state) error {
		if x, ok := st.returns[key(tenantID, id)]; ok {
			out = &x
		}
		return nil
	})
	return out, err
}

func (r returnRepo) ListLines(_ context.Context, tenantID, returnID string) ([]*entity.ReturnLine, error) {
	var out []*entity.ReturnLine
	err := r.view(func(st *state) error {
		src := st.returnLines[key(tenantID, returnID)]
		for i := range src {
			l := src[i]
			out = append(out, &l)
		}
		return nil
	})
	return out, err
}

func (r returnRepo) ListByParent(_ context.Context, tenantID, parentID string) ([]*entity.ReturnDocument, error) {
	var out []*entity.ReturnDocument
	err := r.view(func(st *state) error {
		for _, k := range st.returnOrder {
			x := st.returns[k]
			if x.TenantID == tenantID && x.ParentID == parentID {
				out = append(out, &x)
			}
		}
		return nil
	})
	return out, err
}

func (r returnRepo) ReturnedQuantities(_ context.Context, tenantID, parentID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	err := r.view(func(st *state) error {
		for k, x := range st.returns {
			if x.TenantID != tenantID || x.ParentID != parentID || x.Status != entity.StatusCompleted {
				continue
			}
			for _, l := range st.returnLines[k] {
				out[l.OriginalLineID] = out[l.OriginalLineID].Add(l.ReturnedQuantity)
			}
		}
		return nil
	})
	return out, err
}

func (r returnRepo) NumberExists(_ context.Context, tenantID string, returnType entity.ReturnType, number string) (bool, error) {
	found := false
	err := r.view(func(st *state) error {
		for _, x := range st.returns {
			if x.TenantID == tenantID && x.Type == returnType && x.Number == number {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

func (r returnRepo) MaxNumberWithPrefix(_ context.Context, tenantID string, returnType entity.ReturnType, prefix string) (string, error) {
	var numbers []string
	err := r.view(func(st *state) error {
		for _, x := range st.returns {
			if x.TenantID == tenantID && x.Type == returnType {
				numbers = append(numbers, x.Number)
			}
		}
		return nil
	})
	return maxWithPrefix(numbers, prefix), err
}

// ── Edit history ──────────────────────────────────────────────────────────────

type historyRepo struct{ access }

func (r historyRepo) Append(_ context.Context, rec *entity.EditHistoryRecord) error {
	return r.view(func(st *state) error {
		for _, h := range st.history {
			if h.TenantID == rec.TenantID && h.TransactionType == rec.TransactionType &&
				h.TransactionID == rec.TransactionID && h.EditNumber == rec.EditNumber {
				return domain.ErrDuplicate
			}
		}
		cp := *rec
		cp.OriginalData = append([]byte(nil), rec.OriginalData...)
		st.history = append(st.history, cp)
		return nil
	})
}

func (r historyRepo) ListByTransaction(_ context.Context, tenantID string, docType entity.DocumentType, transactionID string) ([]*entity.EditHistoryRecord, error) {
	var out []*entity.EditHistoryRecord
	err := r.view(func(st *state) error {
		for i := range st.history {
			h := st.history[i]
			if h.TenantID == tenantID && h.TransactionType == docType && h.TransactionID == transactionID {
				out = append(out, &h)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].EditNumber < out[j].EditNumber })
	return out, err
}

// ── Tenant config ─────────────────────────────────────────────────────────────

type seriesRepo struct{ access }

func (r seriesRepo) GetForUpdate(_ context.Context, tenantID, series string) (*entity.NumberSeries, error) {
	var out *entity.NumberSeries
	err := r.view(func(st *state) error {
		if ns, ok := st.series[key(tenantID, series)]; ok {
			out = &ns
		}
		return nil
	})
	return out, err
}

func (r seriesRepo) Save(_ context.Context, ns *entity.NumberSeries) error {
	return r.view(func(st *state) error {
		st.series[key(ns.TenantID, ns.Series)] = *ns
		return nil
	})
}

type settingsRepo struct{ access }

func (r settingsRepo) Get(_ context.Context, tenantID string) (*entity.TenantSettings, error) {
	var out *entity.TenantSettings
	err := r.view(func(st *state) error {
		if ts, ok := st.settings[tenantID]; ok {
			out = &ts
		}
		return nil
	})
	return out, err
}
