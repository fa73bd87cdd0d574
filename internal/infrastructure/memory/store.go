// Package memory implementa los puertos de persistencia en maps en memoria.
// Sirve para desarrollo local sin PostgreSQL y para las pruebas de los casos
// de uso: las transacciones se simulan con un snapshot que se restaura en
// caso de error.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tiendapro/tiendapro-api/internal/application/ledger"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

var (
	_ ledger.TxRunner              = (*Store)(nil)
	_ repository.OutletRepository  = (*outletRepo)(nil)
	_ repository.ProductRepository = (*productRepo)(nil)
)

// data estado completo del almacén. Se copia en profundidad para el snapshot
// transaccional.
type data struct {
	ledger       map[string]*entity.LedgerEntry // clave company/outlet/product
	movements    map[string]*entity.MovementLog
	movementSeq  []string // orden de inserción para listados
	sales        map[string]*entity.Sale
	damages      map[string]*entity.DamageReport
	reservations map[string]*entity.Reservation
	outlets      map[string]*entity.Outlet
	products     map[string]*entity.Product
}

func newData() *data {
	return &data{
		ledger:       make(map[string]*entity.LedgerEntry),
		movements:    make(map[string]*entity.MovementLog),
		sales:        make(map[string]*entity.Sale),
		damages:      make(map[string]*entity.DamageReport),
		reservations: make(map[string]*entity.Reservation),
		outlets:      make(map[string]*entity.Outlet),
		products:     make(map[string]*entity.Product),
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.ledger {
		e := *v
		c.ledger[k] = &e
	}
	for k, v := range d.movements {
		m := *v
		c.movements[k] = &m
	}
	c.movementSeq = append(c.movementSeq, d.movementSeq...)
	for k, v := range d.sales {
		c.sales[k] = cloneSale(v)
	}
	for k, v := range d.damages {
		c.damages[k] = cloneDamage(v)
	}
	for k, v := range d.reservations {
		r := *v
		if v.ExpiresAt != nil {
			t := *v.ExpiresAt
			r.ExpiresAt = &t
		}
		c.reservations[k] = &r
	}
	for k, v := range d.outlets {
		o := *v
		c.outlets[k] = &o
	}
	for k, v := range d.products {
		p := *v
		c.products[k] = &p
	}
	return c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = append([]entity.SaleItem(nil), s.Items...)
	return &c
}

func cloneDamage(d *entity.DamageReport) *entity.DamageReport {
	c := *d
	c.RepairActions = append([]entity.RepairAction(nil), d.RepairActions...)
	c.ScrapActions = append([]entity.ScrapAction(nil), d.ScrapActions...)
	return &c
}

// Store almacén en memoria. Implementa ledger.TxRunner; las transacciones se
// serializan con un mutex global, suficiente para desarrollo y pruebas.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// Run ejecuta fn con repositorios atados al estado actual. Si fn falla, el
// estado se restaura al snapshot previo: todo o nada, como una tx de BD.
func (s *Store) Run(ctx context.Context, fn func(r ledger.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.d.clone()
	if err := fn(&repos{d: s.d}); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// Outlets devuelve el repositorio de puntos de venta.
func (s *Store) Outlets() repository.OutletRepository { return &outletRepo{s: s} }

// Products devuelve el repositorio de productos.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// repos vista de los repositorios dentro de una transacción en curso.
// El mutex ya está tomado por Run, así que operan sin bloquear.
type repos struct {
	d *data
}

func (r *repos) Ledger() repository.LedgerRepository            { return &ledgerRepo{d: r.d} }
func (r *repos) Movements() repository.MovementLogRepository    { return &movementRepo{d: r.d} }
func (r *repos) Sales() repository.SaleRepository               { return &saleRepo{d: r.d} }
func (r *repos) Damages() repository.DamageReportRepository     { return &damageRepo{d: r.d} }
func (r *repos) Reservations() repository.ReservationRepository { return &reservationRepo{d: r.d} }

func ledgerKey(companyID, outletID, productID string) string {
	return companyID + "/" + outletID + "/" + productID
}

// --- libro de stock ---

type ledgerRepo struct {
	d *data
}

func (r *ledgerRepo) Get(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error) {
	if e, ok := r.d.ledger[ledgerKey(companyID, outletID, productID)]; ok {
		c := *e
		return &c, nil
	}
	// Fila inexistente: entrada en cero, como el adaptador de PostgreSQL.
	return &entity.LedgerEntry{CompanyID: companyID, OutletID: outletID, ProductID: productID}, nil
}

func (r *ledgerRepo) GetForUpdate(ctx context.Context, companyID, outletID, productID string) (*entity.LedgerEntry, error) {
	return r.Get(ctx, companyID, outletID, productID)
}

func (r *ledgerRepo) Upsert(ctx context.Context, entry *entity.LedgerEntry) error {
	c := *entry
	r.d.ledger[ledgerKey(entry.CompanyID, entry.OutletID, entry.ProductID)] = &c
	return nil
}

func (r *ledgerRepo) Delete(ctx context.Context, companyID, outletID, productID string) error {
	key := ledgerKey(companyID, outletID, productID)
	if e, ok := r.d.ledger[key]; ok && e.Quantity == 0 && e.DamagedQuantity == 0 {
		delete(r.d.ledger, key)
	}
	return nil
}

func (r *ledgerRepo) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	var list []*entity.LedgerEntry
	for _, e := range r.d.ledger {
		if e.CompanyID == companyID && e.OutletID == outletID {
			c := *e
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return paginate(list, limit, offset), nil
}

// --- registro de movimientos ---

type movementRepo struct {
	d *data
}

func (r *movementRepo) Create(ctx context.Context, log *entity.MovementLog) error {
	c := *log
	r.d.movements[log.ID] = &c
	r.d.movementSeq = append(r.d.movementSeq, log.ID)
	return nil
}

func (r *movementRepo) GetByID(ctx context.Context, id string) (*entity.MovementLog, error) {
	if m, ok := r.d.movements[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (r *movementRepo) ListByOutlet(ctx context.Context, companyID, outletID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error) {
	return r.list(func(m *entity.MovementLog) bool {
		return m.CompanyID == companyID && m.OutletID == outletID && inRange(m.CreatedAt, from, to)
	}, limit, offset), nil
}

func (r *movementRepo) ListByProduct(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]*entity.MovementLog, error) {
	return r.list(func(m *entity.MovementLog) bool {
		return m.CompanyID == companyID && m.ProductID == productID && inRange(m.CreatedAt, from, to)
	}, limit, offset), nil
}

func (r *movementRepo) ListByReference(ctx context.Context, companyID, reference string) ([]*entity.MovementLog, error) {
	return r.list(func(m *entity.MovementLog) bool {
		return m.CompanyID == companyID && m.Reference == reference
	}, 0, 0), nil
}

// list recorre en orden inverso de inserción (más recientes primero, como el
// ORDER BY created_at DESC del adaptador de PostgreSQL).
func (r *movementRepo) list(match func(*entity.MovementLog) bool, limit, offset int) []*entity.MovementLog {
	var list []*entity.MovementLog
	for i := len(r.d.movementSeq) - 1; i >= 0; i-- {
		m := r.d.movements[r.d.movementSeq[i]]
		if match(m) {
			c := *m
			list = append(list, &c)
		}
	}
	return paginate(list, limit, offset)
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// --- ventas ---

type saleRepo struct {
	d *data
}

func (r *saleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	r.d.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (r *saleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if s, ok := r.d.sales[id]; ok {
		return cloneSale(s), nil
	}
	return nil, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) error {
	if s, ok := r.d.sales[id]; ok {
		s.Status = status
		s.UpdatedAt = updatedAt
	}
	return nil
}

func (r *saleRepo) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.Sale, error) {
	var list []*entity.Sale
	for _, s := range r.d.sales {
		if s.CompanyID == companyID && s.OutletID == outletID {
			list = append(list, cloneSale(s))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- reportes de daño ---

type damageRepo struct {
	d *data
}

func (r *damageRepo) Create(ctx context.Context, report *entity.DamageReport) error {
	r.d.damages[report.ID] = cloneDamage(report)
	return nil
}

func (r *damageRepo) GetByID(ctx context.Context, id string) (*entity.DamageReport, error) {
	if d, ok := r.d.damages[id]; ok {
		return cloneDamage(d), nil
	}
	return nil, nil
}

func (r *damageRepo) GetForUpdate(ctx context.Context, id string) (*entity.DamageReport, error) {
	return r.GetByID(ctx, id)
}

func (r *damageRepo) Update(ctx context.Context, report *entity.DamageReport) error {
	if existing, ok := r.d.damages[report.ID]; ok {
		c := cloneDamage(report)
		// Las acciones hijas se mantienen vía AddRepairAction/AddScrapAction.
		c.RepairActions = existing.RepairActions
		c.ScrapActions = existing.ScrapActions
		r.d.damages[report.ID] = c
	}
	return nil
}

func (r *damageRepo) Delete(ctx context.Context, id string) error {
	delete(r.d.damages, id)
	return nil
}

func (r *damageRepo) AddRepairAction(ctx context.Context, action *entity.RepairAction) error {
	if d, ok := r.d.damages[action.ReportID]; ok {
		d.RepairActions = append(d.RepairActions, *action)
	}
	return nil
}

func (r *damageRepo) AddScrapAction(ctx context.Context, action *entity.ScrapAction) error {
	if d, ok := r.d.damages[action.ReportID]; ok {
		d.ScrapActions = append(d.ScrapActions, *action)
	}
	return nil
}

func (r *damageRepo) ListByOutlet(ctx context.Context, companyID, outletID string, limit, offset int) ([]*entity.DamageReport, error) {
	var list []*entity.DamageReport
	for _, d := range r.d.damages {
		if d.CompanyID == companyID && d.OutletID == outletID {
			list = append(list, cloneDamage(d))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

// --- reservas ---

type reservationRepo struct {
	d *data
}

func (r *reservationRepo) Create(ctx context.Context, res *entity.Reservation) error {
	c := *res
	r.d.reservations[res.ID] = &c
	return nil
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*entity.Reservation, error) {
	if res, ok := r.d.reservations[id]; ok {
		c := *res
		return &c, nil
	}
	return nil, nil
}

func (r *reservationRepo) SumActive(ctx context.Context, companyID, outletID, productID string, now time.Time) (int64, error) {
	var total int64
	for _, res := range r.d.reservations {
		if res.CompanyID == companyID && res.OutletID == outletID && res.ProductID == productID && res.Active(now) {
			total += res.Quantity
		}
	}
	return total, nil
}

func (r *reservationRepo) ListActiveByProduct(ctx context.Context, companyID, outletID, productID string, now time.Time) ([]*entity.Reservation, error) {
	var list []*entity.Reservation
	for _, res := range r.d.reservations {
		if res.CompanyID == companyID && res.OutletID == outletID && res.ProductID == productID && res.Active(now) {
			c := *res
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (r *reservationRepo) Delete(ctx context.Context, id string) error {
	delete(r.d.reservations, id)
	return nil
}

// --- catálogo ---

type outletRepo struct {
	s *Store
}

func (r *outletRepo) Create(ctx context.Context, outlet *entity.Outlet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *outlet
	r.s.d.outlets[outlet.ID] = &c
	return nil
}

func (r *outletRepo) GetByID(ctx context.Context, id string) (*entity.Outlet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if o, ok := r.s.d.outlets[id]; ok {
		c := *o
		return &c, nil
	}
	return nil, nil
}

func (r *outletRepo) Update(ctx context.Context, outlet *entity.Outlet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *outlet
	r.s.d.outlets[outlet.ID] = &c
	return nil
}

func (r *outletRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Outlet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Outlet
	for _, o := range r.s.d.outlets {
		if o.CompanyID == companyID {
			c := *o
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

func (r *outletRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.d.outlets, id)
	return nil
}

type productRepo struct {
	s *Store
}

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *product
	r.s.d.products[product.ID] = &c
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.d.products[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.products {
		if p.CompanyID == companyID && strings.EqualFold(p.SKU, sku) {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *productRepo) Update(ctx context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *product
	r.s.d.products[product.ID] = &c
	return nil
}

func (r *productRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Product
	for _, p := range r.s.d.products {
		if p.CompanyID == companyID {
			c := *p
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

// paginate aplica limit/offset sobre la lista ya ordenada. limit 0 = sin límite.
func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
