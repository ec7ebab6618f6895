package repository

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

// FixtureStore is the static in-memory data source used when no database
// is configured. It backs development and tests with a sample chocolate
// catalog and implements every repository interface, so the rest of the
// service is oblivious to which data source is active.
type FixtureStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]*models.Product
	orders   map[uuid.UUID]*models.Order
	reviews  map[uuid.UUID]*models.Review
	roles    map[uuid.UUID]*models.RoleAssignment
	settings map[string]*models.StorefrontSetting
}

// NewFixtureStore creates a fixture store seeded with the sample catalog.
func NewFixtureStore() *FixtureStore {
	s := &FixtureStore{
		products: make(map[uuid.UUID]*models.Product),
		orders:   make(map[uuid.UUID]*models.Order),
		reviews:  make(map[uuid.UUID]*models.Review),
		roles:    make(map[uuid.UUID]*models.RoleAssignment),
		settings: make(map[string]*models.StorefrontSetting),
	}
	for _, p := range SampleProducts() {
		product := p
		s.products[product.ID] = &product
	}
	return s
}

// SampleProducts returns the seeded development catalog. IDs are fixed so
// fixture orders and tests can reference them.
func SampleProducts() []models.Product {
	now := time.Now().UTC()
	return []models.Product{
		{
			ID:          uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b001"),
			Name:        "Grand Cru Noir 72%",
			Description: "Single-origin dark chocolate bar, Ecuador Arriba Nacional.",
			Price:       decimal.RequireFromString("6.90"),
			Category:    "bars",
			Stock:       120,
			Tags:        datatypes.JSON([]byte(`["dark","single-origin"]`)),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b002"),
			Name:        "Praliné Box",
			Description: "Hazelnut pralines, handmade in small batches.",
			Price:       decimal.RequireFromString("24.90"),
			Category:    "boxes",
			Stock:       45,
			BoxPrices:   datatypes.JSON([]byte(`{"9":"24.90","16":"39.90","25":"54.90"}`)),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b003"),
			Name:        "Sea Salt Caramels",
			Description: "Soft caramels enrobed in milk chocolate, fleur de sel finish.",
			Price:       decimal.RequireFromString("18.50"),
			Category:    "boxes",
			Stock:       60,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.MustParse("0b8cbe21-4f46-4a45-9d12-8a22e0a1b004"),
			Name:        "Drinking Chocolate Tin",
			Description: "70% flakes for thick drinking chocolate, 250g tin.",
			Price:       decimal.RequireFromString("14.00"),
			Category:    "pantry",
			Stock:       80,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// ---- ProductRepository ----

func (s *FixtureStore) Create(product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (s *FixtureStore) GetByID(id uuid.UUID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok || p.DeletedAt.Valid {
		return nil, apperr.NotFound("product", id.String())
	}
	clone := *p
	return &clone, nil
}

func (s *FixtureStore) List(filters ProductFilters) ([]models.Product, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Product
	for _, p := range s.products {
		if p.DeletedAt.Valid {
			continue
		}
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *FixtureStore) Update(product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return apperr.NotFound("product", product.ID.String())
	}
	product.UpdatedAt = time.Now().UTC()
	clone := *product
	s.products[product.ID] = &clone
	return nil
}

func (s *FixtureStore) SoftDelete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || p.DeletedAt.Valid {
		return apperr.NotFound("product", id.String())
	}
	p.DeletedAt.Time = time.Now().UTC()
	p.DeletedAt.Valid = true
	return nil
}

func (s *FixtureStore) DecrementStock(id uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return apperr.NotFound("product", id.String())
	}
	p.Stock -= quantity
	if p.Stock < 0 {
		p.Stock = 0
	}
	return nil
}

func (s *FixtureStore) SetStock(id uuid.UUID, quantity int) error {
	if quantity < 0 {
		return apperr.Validation("stock must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return apperr.NotFound("product", id.String())
	}
	p.Stock = quantity
	return nil
}

// ---- OrderRepository ----

func (s *FixtureStore) Insert(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt
	clone := *order
	clone.Items = nil
	s.orders[order.ID] = &clone
	return nil
}

func (s *FixtureStore) InsertItems(items []models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		order, ok := s.orders[items[i].OrderID]
		if !ok {
			return apperr.NotFound("order", items[i].OrderID.String())
		}
		order.Items = append(order.Items, items[i])
	}
	return nil
}

func (s *FixtureStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	return nil
}

func (s *FixtureStore) GetOrder(id uuid.UUID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, apperr.NotFound("order", id.String())
	}
	clone := *o
	return &clone, nil
}

// GetByID on FixtureStore is taken by ProductRepository; OrderRepository
// is exposed through the orderFixture wrapper below.

type orderFixture struct{ s *FixtureStore }

// Orders returns the store's OrderRepository view.
func (s *FixtureStore) Orders() OrderRepository { return &orderFixture{s: s} }

// Products returns the store's ProductRepository view.
func (s *FixtureStore) Products() ProductRepository { return s }

func (f *orderFixture) Insert(order *models.Order) error          { return f.s.Insert(order) }
func (f *orderFixture) InsertItems(items []models.OrderItem) error { return f.s.InsertItems(items) }
func (f *orderFixture) Delete(id uuid.UUID) error                 { return f.s.Delete(id) }

func (f *orderFixture) GetByID(id uuid.UUID) (*models.Order, error) {
	return f.s.GetOrder(id)
}

func (f *orderFixture) GetByPaymentRef(ref string) (*models.Order, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	for _, o := range f.s.orders {
		if o.PaymentRef == ref {
			clone := *o
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("order", ref)
}

func (f *orderFixture) ListByCustomer(email string) ([]models.Order, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	var out []models.Order
	for _, o := range f.s.orders {
		if strings.EqualFold(o.CustomerEmail, email) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *orderFixture) ListAll() ([]models.Order, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	out := make([]models.Order, 0, len(f.s.orders))
	for _, o := range f.s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *orderFixture) UpdateStatus(id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orders[id]
	if !ok {
		return nil, apperr.NotFound("order", id.String())
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	clone := *o
	return &clone, nil
}

// ---- ReviewRepository ----

type reviewFixture struct{ s *FixtureStore }

// Reviews returns the store's ReviewRepository view.
func (s *FixtureStore) Reviews() ReviewRepository { return &reviewFixture{s: s} }

func (f *reviewFixture) Create(review *models.Review) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now().UTC()
	review.UpdatedAt = review.CreatedAt
	clone := *review
	f.s.reviews[review.ID] = &clone
	return nil
}

func (f *reviewFixture) GetByID(id uuid.UUID) (*models.Review, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	rv, ok := f.s.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review", id.String())
	}
	clone := *rv
	return &clone, nil
}

func (f *reviewFixture) HasNonRejected(productID, userID uuid.UUID) (bool, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	for _, rv := range f.s.reviews {
		if rv.ProductID == productID && rv.UserID == userID && rv.Status != models.ReviewRejected {
			return true, nil
		}
	}
	return false, nil
}

func (f *reviewFixture) ListByProduct(productID uuid.UUID, status models.ReviewStatus) ([]models.Review, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	var out []models.Review
	for _, rv := range f.s.reviews {
		if rv.ProductID != productID {
			continue
		}
		if status != "" && rv.Status != status {
			continue
		}
		out = append(out, *rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *reviewFixture) ListByStatus(status models.ReviewStatus) ([]models.Review, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	var out []models.Review
	for _, rv := range f.s.reviews {
		if status != "" && rv.Status != status {
			continue
		}
		out = append(out, *rv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *reviewFixture) UpdateStatus(id uuid.UUID, status models.ReviewStatus) (*models.Review, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rv, ok := f.s.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review", id.String())
	}
	rv.Status = status
	rv.UpdatedAt = time.Now().UTC()
	clone := *rv
	return &clone, nil
}

// ---- RoleRepository ----

type roleFixture struct{ s *FixtureStore }

// Roles returns the store's RoleRepository view.
func (s *FixtureStore) Roles() RoleRepository { return &roleFixture{s: s} }

func (f *roleFixture) GetRole(userID uuid.UUID) (models.Role, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	a, ok := f.s.roles[userID]
	if !ok {
		return models.RoleUser, nil
	}
	return models.NormalizeRole(string(a.Role)), nil
}

func (f *roleFixture) SetRole(userID uuid.UUID, email string, role models.Role) (*models.RoleAssignment, error) {
	if !role.IsAdmin() && role != models.RoleUser {
		return nil, apperr.Validation("unknown role %q", role)
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a := &models.RoleAssignment{UserID: userID, Email: email, Role: role, UpdatedAt: time.Now().UTC()}
	if existing, ok := f.s.roles[userID]; ok {
		a.CreatedAt = existing.CreatedAt
	} else {
		a.CreatedAt = a.UpdatedAt
	}
	f.s.roles[userID] = a
	clone := *a
	return &clone, nil
}

func (f *roleFixture) List() ([]models.RoleAssignment, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	out := make([]models.RoleAssignment, 0, len(f.s.roles))
	for _, a := range f.s.roles {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- SettingsRepository ----

type settingsFixture struct{ s *FixtureStore }

// Settings returns the store's SettingsRepository view.
func (s *FixtureStore) Settings() SettingsRepository { return &settingsFixture{s: s} }

func (f *settingsFixture) Get(key string) (*models.StorefrontSetting, error) {
	f.s.mu.RLock()
	defer f.s.mu.RUnlock()
	setting, ok := f.s.settings[key]
	if !ok {
		return nil, apperr.NotFound("setting", key)
	}
	clone := *setting
	return &clone, nil
}

func (f *settingsFixture) Put(key string, value datatypes.JSON) (*models.StorefrontSetting, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	setting, ok := f.s.settings[key]
	if !ok {
		setting = &models.StorefrontSetting{ID: uuid.New(), Key: key, CreatedAt: time.Now().UTC()}
		f.s.settings[key] = setting
	}
	setting.Value = value
	setting.UpdatedAt = time.Now().UTC()
	clone := *setting
	return &clone, nil
}
