package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/example/keebstore/pkg/auth"
	"github.com/example/keebstore/pkg/cart"
	"github.com/example/keebstore/pkg/checkout"
	"github.com/example/keebstore/pkg/config"
	"github.com/example/keebstore/pkg/models"
	"github.com/example/keebstore/pkg/payment"
	"github.com/example/keebstore/pkg/pricing"
	"github.com/example/keebstore/pkg/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{items: make(map[primitive.ObjectID]*models.Product)}
}

func (f *fakeProducts) add(p models.Product) models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Slug == "" {
		p.Slug = models.Slugify(p.Name)
	}
	f.items[p.ID] = &p
	return p
}

func (f *fakeProducts) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Product
	for _, p := range f.items {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Featured && !p.Featured {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProducts) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.Slug == slug {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProducts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProducts) Create(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = primitive.NewObjectID()
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}
	copied := *product
	f.items[product.ID] = &copied
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[product.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *product
	f.items[product.ID] = &copied
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeProducts) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

type fakeOrders struct {
	mu       sync.Mutex
	items    map[primitive.ObjectID]*models.Order
	placeErr error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{items: make(map[primitive.ObjectID]*models.Order)}
}

func (f *fakeOrders) Place(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placeErr != nil {
		return f.placeErr
	}
	order.ID = primitive.NewObjectID()
	copied := *order
	f.items[order.ID] = &copied
	return nil
}

func (f *fakeOrders) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.items {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.items {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) MarkPaid(ctx context.Context, id primitive.ObjectID, result models.PaymentResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentResult = &result
	return nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) SetTracking(ctx context.Context, id primitive.ObjectID, trackingNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.TrackingNumber = trackingNumber
	return nil
}

func (f *fakeOrders) UserHasPaidOrderWith(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.items {
		if o.UserID != userID || !o.IsPaid {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeOrders) Stats(ctx context.Context) (int64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var revenue float64
	for _, o := range f.items {
		if o.IsPaid {
			revenue += o.Total
		}
	}
	return int64(len(f.items)), revenue, nil
}

type fakeReviews struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{items: make(map[primitive.ObjectID]*models.Review)}
}

func (f *fakeReviews) Create(ctx context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.items {
		if r.ProductID == review.ProductID && r.UserID == review.UserID {
			return repository.ErrDuplicate
		}
	}
	review.ID = primitive.NewObjectID()
	copied := *review
	f.items[review.ID] = &copied
	return nil
}

func (f *fakeReviews) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReviews) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Review
	for _, r := range f.items {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviews) Update(ctx context.Context, review *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[review.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *review
	f.items[review.ID] = &copied
	return nil
}

func (f *fakeReviews) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	f.items[user.ID] = &copied
	return nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) Update(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[user.ID]; !ok {
		return repository.ErrNotFound
	}
	copied := *user
	f.items[user.ID] = &copied
	return nil
}

func (f *fakeUsers) ListAll(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.items {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items)), nil
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []repository.AuditLog
}

func (f *fakeAudit) Record(ctx context.Context, log *repository.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeAudit) ListByEntity(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.AuditLog
	for i := range f.logs {
		if f.logs[i].EntityID == entityID && int64(len(out)) < limit {
			entry := f.logs[i]
			out = append(out, &entry)
		}
	}
	return out, nil
}

// testEnv wires a full server against in-memory collaborators.
type testEnv struct {
	srv      *Server
	products *fakeProducts
	orders   *fakeOrders
	reviews  *fakeReviews
	users    *fakeUsers
	audit    *fakeAudit
	carts    cart.Store
	tokens   *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
	tokens := auth.NewManager("test-secret", time.Hour)
	calculator := pricing.NewCalculator(&config.PricingConfig{
		StandardFee:      9.99,
		ExpressFee:       19.99,
		OvernightFee:     39.99,
		FreeShippingOver: 50,
		TaxRate:          0.08,
	})

	products := newFakeProducts()
	orders := newFakeOrders()
	reviews := newFakeReviews()
	users := newFakeUsers()
	audit := &fakeAudit{}
	carts := cart.NewMemoryStore()

	checkoutSvc := checkout.NewService(products, orders, carts, calculator, zap.NewNop())

	srv := NewServer(cfg, zap.NewNop(), Deps{
		Products: products,
		Orders:   orders,
		Reviews:  reviews,
		Users:    users,
		Audit:    audit,
		Carts:    carts,
		Checkout: checkoutSvc,
		Verifier: payment.NewTrustedVerifier(),
		Pricing:  calculator,
		Tokens:   tokens,
	})
	srv.SetupRoutes()

	return &testEnv{
		srv:      srv,
		products: products,
		orders:   orders,
		reviews:  reviews,
		users:    users,
		audit:    audit,
		carts:    carts,
		tokens:   tokens,
	}
}

// addUser seeds a user and returns it with a valid bearer token.
func (e *testEnv) addUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token, err := e.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(w, req)
	return w
}

func authHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders/myorders"},
		{http.MethodPost, "/api/reviews"},
		{http.MethodGet, "/api/admin/stats"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, nil, nil)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.addUser(t, "shopper@example.com", models.RoleCustomer)

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/orders", nil},
		{http.MethodPost, "/api/products", map[string]interface{}{"name": "x"}},
		{http.MethodGet, "/api/admin/stats", nil},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(t, tt.method, tt.path, tt.body, authHeader(token))
			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", w.Code)
			}
		})
	}
}
