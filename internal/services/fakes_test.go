package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"rentflow/internal/common"
	"rentflow/internal/models"

	"github.com/google/uuid"
)

// memStore backs the in-memory repositories so lifecycle tests can assert on the resulting state
// across entities. fail injects an error for a named operation.
type memStore struct {
	mu          sync.Mutex
	properties  map[uuid.UUID]models.Property
	tenants     map[uuid.UUID]models.Tenant
	leases      map[uuid.UUID]models.Lease
	maintenance map[uuid.UUID]models.MaintenanceRequest
	clearances  map[uuid.UUID]models.Clearance
	fail        map[string]error
	calls       map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		properties:  map[uuid.UUID]models.Property{},
		tenants:     map[uuid.UUID]models.Tenant{},
		leases:      map[uuid.UUID]models.Lease{},
		maintenance: map[uuid.UUID]models.MaintenanceRequest{},
		clearances:  map[uuid.UUID]models.Clearance{},
		fail:        map[string]error{},
		calls:       map[string]int{},
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *memStore) callCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter must be called with mu held.
func (s *memStore) enter(op string) error {
	s.calls[op]++
	return s.fail[op]
}

func (s *memStore) addProperty(status models.PropertyStatus) models.Property {
	p := models.Property{ID: uuid.New(), Name: "Flat 2B", Address: "14 Harbour Rd", MonthlyRent: 950, Status: status}
	s.properties[p.ID] = p
	return p
}

func (s *memStore) addTenant(status models.TenantStatus) models.Tenant {
	t := models.Tenant{ID: uuid.New(), Name: "Ada Obi", Email: "ada@example.com", Status: status}
	s.tenants[t.ID] = t
	return t
}

func (s *memStore) propertyStatus(id uuid.UUID) models.PropertyStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.properties[id].Status
}

func (s *memStore) tenant(id uuid.UUID) models.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenants[id]
}

func (s *memStore) lease(id uuid.UUID) models.Lease {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leases[id]
}

type fakePropertyRepo struct{ s *memStore }

func (r fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("properties.Create"); err != nil {
		return err
	}
	r.s.properties[p.ID] = *p
	return nil
}

func (r fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("properties.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.properties[id]
	if !ok {
		return nil, common.NewNotFoundError("property", id)
	}
	return &p, nil
}

func (r fakePropertyRepo) Update(_ context.Context, p *models.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("properties.Update"); err != nil {
		return err
	}
	stored := r.s.properties[p.ID]
	status := stored.Status
	stored = *p
	stored.Status = status
	r.s.properties[p.ID] = stored
	return nil
}

func (r fakePropertyRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, next models.PropertyStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("properties.UpdateStatusIf"); err != nil {
		return false, err
	}
	p, ok := r.s.properties[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	p.Status = next
	r.s.properties[id] = p
	return true, nil
}

func (r fakePropertyRepo) List(_ context.Context, limit, offset int) ([]*models.Property, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Property
	for _, p := range r.s.properties {
		p := p
		out = append(out, &p)
	}
	return page(out, limit, offset), nil
}

type fakeTenantRepo struct{ s *memStore }

func (r fakeTenantRepo) Create(_ context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("tenants.Create"); err != nil {
		return err
	}
	r.s.tenants[t.ID] = *t
	return nil
}

func (r fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("tenants.GetByID"); err != nil {
		return nil, err
	}
	t, ok := r.s.tenants[id]
	if !ok {
		return nil, common.NewNotFoundError("tenant", id)
	}
	return &t, nil
}

func (r fakeTenantRepo) Update(_ context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("tenants.Update"); err != nil {
		return err
	}
	stored := r.s.tenants[t.ID]
	stored.Name, stored.Email, stored.Phone, stored.PropertyID = t.Name, t.Email, t.Phone, t.PropertyID
	r.s.tenants[t.ID] = stored
	return nil
}

func (r fakeTenantRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, next models.TenantStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("tenants.UpdateStatusIf"); err != nil {
		return false, err
	}
	t, ok := r.s.tenants[id]
	if !ok || t.Status != expected {
		return false, nil
	}
	t.Status = next
	r.s.tenants[id] = t
	return true, nil
}

func (r fakeTenantRepo) SetLease(_ context.Context, id uuid.UUID, leaseID *uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("tenants.SetLease"); err != nil {
		return err
	}
	t := r.s.tenants[id]
	t.LeaseID = leaseID
	r.s.tenants[id] = t
	return nil
}

func (r fakeTenantRepo) List(_ context.Context, limit, offset int) ([]*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Tenant
	for _, t := range r.s.tenants {
		t := t
		out = append(out, &t)
	}
	return page(out, limit, offset), nil
}

type fakeLeaseRepo struct{ s *memStore }

func (r fakeLeaseRepo) Create(_ context.Context, l *models.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("leases.Create"); err != nil {
		return err
	}
	stored := *l
	stored.Tenant, stored.Property = nil, nil
	r.s.leases[l.ID] = stored
	return nil
}

func (r fakeLeaseRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("leases.GetByID"); err != nil {
		return nil, err
	}
	l, ok := r.s.leases[id]
	if !ok {
		return nil, common.NewNotFoundError("lease", id)
	}
	return &l, nil
}

func (r fakeLeaseRepo) Update(_ context.Context, l *models.Lease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("leases.Update"); err != nil {
		return err
	}
	current, ok := r.s.leases[l.ID]
	if !ok || current.Status != l.Status {
		return common.NewConflictError("lease %s is no longer %s", l.ID, l.Status)
	}
	stored := *l
	stored.Tenant, stored.Property = nil, nil
	stored.Status = current.Status
	r.s.leases[l.ID] = stored
	return nil
}

// racingLeaseRepo runs beforeUpdate ahead of every write, standing in for a concurrent sweep.
type racingLeaseRepo struct {
	fakeLeaseRepo
	beforeUpdate func()
}

func (r racingLeaseRepo) Update(ctx context.Context, l *models.Lease) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	return r.fakeLeaseRepo.Update(ctx, l)
}

func (r fakeLeaseRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("leases.Delete"); err != nil {
		return err
	}
	delete(r.s.leases, id)
	return nil
}

func (r fakeLeaseRepo) ListExpirable(_ context.Context, now time.Time) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("leases.ListExpirable"); err != nil {
		return nil, err
	}
	var out []*models.Lease
	for _, l := range r.s.leases {
		if !l.LeaseEnd.After(now) && l.Status != models.LeaseStatusExpired {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaseEnd.Before(out[j].LeaseEnd) })
	return out, nil
}

func (r fakeLeaseRepo) MarkExpired(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("leases.MarkExpired"); err != nil {
		return false, err
	}
	l, ok := r.s.leases[id]
	if !ok || l.Status == models.LeaseStatusExpired {
		return false, nil
	}
	l.Status = models.LeaseStatusExpired
	r.s.leases[id] = l
	return true, nil
}

func (r fakeLeaseRepo) List(_ context.Context, limit, offset int) ([]*models.Lease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Lease
	for _, l := range r.s.leases {
		l := l
		out = append(out, &l)
	}
	return page(out, limit, offset), nil
}

type fakeMaintenanceRepo struct{ s *memStore }

func (r fakeMaintenanceRepo) Create(_ context.Context, m *models.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("maintenance.Create"); err != nil {
		return err
	}
	r.s.maintenance[m.ID] = *m
	return nil
}

func (r fakeMaintenanceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("maintenance.GetByID"); err != nil {
		return nil, err
	}
	m, ok := r.s.maintenance[id]
	if !ok {
		return nil, common.NewNotFoundError("maintenance request", id)
	}
	return &m, nil
}

func (r fakeMaintenanceRepo) Update(_ context.Context, m *models.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("maintenance.Update"); err != nil {
		return err
	}
	r.s.maintenance[m.ID] = *m
	return nil
}

func (r fakeMaintenanceRepo) ListByProperty(_ context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.MaintenanceRequest
	for _, m := range r.s.maintenance {
		if m.PropertyID == propertyID {
			m := m
			out = append(out, &m)
		}
	}
	return out, nil
}

type fakeClearanceRepo struct{ s *memStore }

func (r fakeClearanceRepo) Create(_ context.Context, c *models.Clearance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("clearances.Create"); err != nil {
		return err
	}
	r.s.clearances[c.ID] = *c
	return nil
}

func (r fakeClearanceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Clearance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("clearances.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.clearances[id]
	if !ok {
		return nil, common.NewNotFoundError("clearance", id)
	}
	return &c, nil
}

func (r fakeClearanceRepo) Update(_ context.Context, c *models.Clearance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.enter("clearances.Update"); err != nil {
		return err
	}
	r.s.clearances[c.ID] = *c
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
