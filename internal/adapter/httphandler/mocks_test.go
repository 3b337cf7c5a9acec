package httphandler

import (
	"context"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) AddProduct(
	ctx context.Context, np domain.NewProduct, images []domain.ImageUpload,
) (domain.Product, error) {
	args := m.Called(ctx, np, images)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProducts) GetProduct(ctx context.Context, id uint) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProducts) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProducts) ListProductsByCategory(
	ctx context.Context, id uint,
) ([]domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProducts) ListProductsByCollection(
	ctx context.Context, id uint,
) ([]domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProducts) UpdateProduct(
	ctx context.Context, id uint, upd domain.ProductUpdate, images []domain.ImageUpload,
) (domain.Product, error) {
	args := m.Called(ctx, id, upd, images)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProducts) DeleteProduct(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) AddCategory(ctx context.Context, name string) (domain.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalog) AddCollection(ctx context.Context, name string) (domain.Collection, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Collection), args.Error(1)
}

func (m *MockCatalog) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Collection), args.Error(1)
}

func (m *MockCatalog) AddSpell(ctx context.Context, ns domain.NewSpell) (domain.Spell, error) {
	args := m.Called(ctx, ns)
	return args.Get(0).(domain.Spell), args.Error(1)
}

func (m *MockCatalog) GetSpell(ctx context.Context, id uint) (domain.Spell, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Spell), args.Error(1)
}

func (m *MockCatalog) ListSpells(ctx context.Context) ([]domain.Spell, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Spell), args.Error(1)
}

type MockCart struct {
	mock.Mock
}

func (m *MockCart) AddItem(
	ctx context.Context, userID uint, in domain.CartItemInput,
) (domain.CartItem, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

func (m *MockCart) ListItems(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCart) UpdateItem(
	ctx context.Context, userID, itemID uint, quantity int,
) (domain.CartItem, bool, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	return args.Get(0).(domain.CartItem), args.Bool(1), args.Error(2)
}

func (m *MockCart) RemoveItem(ctx context.Context, userID, itemID uint) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Signup(ctx context.Context, s domain.Signup) (domain.Session, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *MockAuth) Login(ctx context.Context, c domain.Credentials) (domain.Session, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(domain.Session), args.Error(1)
}

// stubTokens accepts "admin" and "user" tokens.
type stubTokens struct{}

func (stubTokens) Verify(token string) (domain.Claims, error) {
	switch token {
	case "admin":
		return domain.Claims{UserID: 1, Role: domain.RoleAdmin}, nil
	case "user":
		return domain.Claims{UserID: 2, Role: domain.RoleUser}, nil
	}
	return domain.Claims{}, domain.ErrUnauthorized
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}
