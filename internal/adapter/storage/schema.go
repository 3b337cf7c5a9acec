package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

type category struct {
	CategoryID uint      `gorm:"primaryKey"`
	Name       string    `gorm:"size:255;not null;uniqueIndex"`
	Products   []product `gorm:"foreignKey:CategoryID;references:CategoryID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (category) TableName() string { return "categories" }

type collection struct {
	CollectionID uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:255;not null;uniqueIndex"`
	Products     []product `gorm:"foreignKey:CollectionID;references:CollectionID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (collection) TableName() string { return "collections" }

type product struct {
	ProductID    uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:255;not null"`
	Description  string          `gorm:"type:text"`
	Quantity     int             `gorm:"not null;default:0"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CategoryID   uint            `gorm:"not null;index"`
	CollectionID uint            `gorm:"not null;index"`
	Category     category
	Collection   collection
	Images       []image `gorm:"foreignKey:ProductID;references:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (product) TableName() string { return "products" }

type image struct {
	ImageID   uint   `gorm:"primaryKey"`
	Name      string `gorm:"column:image_name;size:512;not null"`
	URL       string `gorm:"column:image_url;size:1024;not null"`
	ProductID uint   `gorm:"not null;index"`
	CreatedAt time.Time
}

func (image) TableName() string { return "images" }

type spell struct {
	SpellID     uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity    int             `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (spell) TableName() string { return "spells" }

type user struct {
	UserID       uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;not null;uniqueIndex"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;not null;default:'user'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (user) TableName() string { return "users" }

type cart struct {
	CartID    uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;uniqueIndex"`
	Items     []cartItem `gorm:"foreignKey:CartID;references:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cart) TableName() string { return "carts" }

type cartItem struct {
	ItemID    uint  `gorm:"primaryKey"`
	CartID    uint  `gorm:"not null;index"`
	ProductID *uint `gorm:"index"`
	SpellID   *uint `gorm:"index"`
	Quantity  int   `gorm:"not null"`
	Product   *product
	Spell     *spell
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartItem) TableName() string { return "cartitems" }

type outboxMessage struct {
	ID          string `gorm:"primaryKey;size:36"`
	Kind        string `gorm:"size:32;not null"`
	AggregateID string `gorm:"size:512;not null"`
	Payload     string `gorm:"type:text;not null"`
	Status      string `gorm:"size:16;not null;index"`
	Attempts    int    `gorm:"not null;default:0"`
	LastError   string `gorm:"type:text"`
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func (outboxMessage) TableName() string { return "outbox_messages" }

// models lists the tables in dependency order.
func models() []any {
	return []any{
		&category{}, &collection{}, &product{}, &image{},
		&spell{}, &user{}, &cart{}, &cartItem{}, &outboxMessage{},
	}
}
