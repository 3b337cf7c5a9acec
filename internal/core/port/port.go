package port

import (
	"context"
	"io"

	"github.com/niksmo/spellshop/internal/core/domain"
)

type (
	runnerContext interface {
		Run(context.Context)
	}

	closer interface {
		Close()
	}
)

// Inbound ports, served by the core services.

type ProductsCatalog interface {
	AddProduct(context.Context, domain.NewProduct, []domain.ImageUpload) (domain.Product, error)
	GetProduct(ctx context.Context, productID uint) (domain.Product, error)
	ListProducts(context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uint) ([]domain.Product, error)
	ListProductsByCollection(ctx context.Context, collectionID uint) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, productID uint, upd domain.ProductUpdate, images []domain.ImageUpload) (domain.Product, error)
	DeleteProduct(ctx context.Context, productID uint) error
}

type CategoriesCatalog interface {
	AddCategory(ctx context.Context, name string) (domain.Category, error)
	ListCategories(context.Context) ([]domain.Category, error)
}

type CollectionsCatalog interface {
	AddCollection(ctx context.Context, name string) (domain.Collection, error)
	ListCollections(context.Context) ([]domain.Collection, error)
}

type SpellsCatalog interface {
	AddSpell(context.Context, domain.NewSpell) (domain.Spell, error)
	GetSpell(ctx context.Context, spellID uint) (domain.Spell, error)
	ListSpells(context.Context) ([]domain.Spell, error)
}

type CartKeeper interface {
	AddItem(ctx context.Context, userID uint, in domain.CartItemInput) (domain.CartItem, error)
	ListItems(ctx context.Context, userID uint) ([]domain.CartItem, error)
	// UpdateItem sets the item quantity. A quantity below 1 removes the
	// item and reports removed.
	UpdateItem(ctx context.Context, userID, itemID uint, quantity int) (item domain.CartItem, removed bool, err error)
	RemoveItem(ctx context.Context, userID, itemID uint) error
}

type Authenticator interface {
	Signup(context.Context, domain.Signup) (domain.Session, error)
	Login(context.Context, domain.Credentials) (domain.Session, error)
}

type OutboxRelay interface {
	runnerContext
}

// Outbound ports, implemented by the adapters.

type ProductsRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	ReadProduct(ctx context.Context, productID uint) (domain.Product, error)
	ListProducts(context.Context) ([]domain.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uint) ([]domain.Product, error)
	ListProductsByCollection(ctx context.Context, collectionID uint) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, productID uint, upd domain.ProductUpdate) error
	DeleteProduct(ctx context.Context, productID uint) error
}

type ImagesRepository interface {
	ListImages(ctx context.Context, productID uint) ([]domain.ProductImage, error)
	CreateImages(ctx context.Context, imgs []domain.ProductImage) error
	DeleteImages(ctx context.Context, productID uint) error
}

type CategoriesRepository interface {
	CategoryNameTaken(ctx context.Context, name string, m domain.NameMatch) (bool, error)
	CreateCategory(ctx context.Context, name string) (domain.Category, error)
	ListCategories(context.Context) ([]domain.Category, error)
}

type CollectionsRepository interface {
	CollectionNameTaken(ctx context.Context, name string, m domain.NameMatch) (bool, error)
	CreateCollection(ctx context.Context, name string) (domain.Collection, error)
	ListCollections(context.Context) ([]domain.Collection, error)
}

type SpellsRepository interface {
	CreateSpell(ctx context.Context, s *domain.Spell) error
	ReadSpell(ctx context.Context, spellID uint) (domain.Spell, error)
	ListSpells(context.Context) ([]domain.Spell, error)
}

type CartsRepository interface {
	ReadOrCreateCart(ctx context.Context, userID uint) (domain.Cart, error)
	FindCartItem(ctx context.Context, cartID uint, productID, spellID *uint) (domain.CartItem, error)
	ReadCartItem(ctx context.Context, cartID, itemID uint) (domain.CartItem, error)
	ListCartItems(ctx context.Context, cartID uint) ([]domain.CartItem, error)
	CreateCartItem(ctx context.Context, item *domain.CartItem) error
	UpdateCartItemQuantity(ctx context.Context, cartID, itemID uint, quantity int) error
	DeleteCartItem(ctx context.Context, cartID, itemID uint) error
	DeleteCartItemsByProduct(ctx context.Context, productID uint) error
}

type UsersRepository interface {
	CreateUser(ctx context.Context, u *domain.User) error
	ReadUserByEmail(ctx context.Context, email string) (domain.User, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, msgs ...domain.OutboxMessage) error
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxMessage, error)
	MarkDone(ctx context.Context, id string) error
	MarkAttempt(ctx context.Context, id string, lastErr string, status domain.OutboxStatus) error
}

// TxStorage is the relational store bound to an open transaction.
type TxStorage interface {
	ProductsRepository
	ImagesRepository
	CategoriesRepository
	CollectionsRepository
	SpellsRepository
	CartsRepository
	UsersRepository
	OutboxRepository
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	Do(ctx context.Context, fn func(TxStorage) error) error
}

type CatalogStorage interface {
	Transactor
	ProductsRepository
	CategoriesRepository
	CollectionsRepository
	SpellsRepository
	OutboxRepository
}

type CartStorage interface {
	Transactor
	CartsRepository
}

type Pinger interface {
	Ping(context.Context) error
}

type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (domain.BlobObject, error)
	// Delete removes the object. A missing object is not an error.
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(context.Context, domain.CatalogEvent) error
	closer
}

type TokenIssuer interface {
	Issue(domain.User) (domain.Session, error)
}

type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}
