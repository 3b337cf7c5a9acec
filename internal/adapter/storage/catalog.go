package storage

import (
	"context"
	"strings"

	"github.com/niksmo/spellshop/internal/core/domain"
	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// nameMatches compares the name column case-insensitively. In prefix mode a
// stored name starting with name matches.
func nameMatches(name string, m domain.NameMatch) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if m == domain.NameMatchExact {
			return db.Where("LOWER(name) = LOWER(?)", name)
		}
		return db.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, likeEscaper.Replace(name)+"%")
	}
}

func (s *Storage) CategoryNameTaken(
	ctx context.Context, name string, m domain.NameMatch,
) (bool, error) {
	const op = "Storage.CategoryNameTaken"

	var n int64
	err := s.db.WithContext(ctx).
		Model(&category{}).
		Scopes(nameMatches(name, m)).
		Count(&n).Error
	if err != nil {
		return false, translate(op, err)
	}
	return n > 0, nil
}

func (s *Storage) CreateCategory(
	ctx context.Context, name string,
) (domain.Category, error) {
	const op = "Storage.CreateCategory"

	m := category{Name: name}
	if err := s.db.WithContext(ctx).Omit("Products").Create(&m).Error; err != nil {
		return domain.Category{}, translate(op, err)
	}
	return domain.Category{CategoryID: m.CategoryID, Name: m.Name}, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Storage.ListCategories"

	var ms []category
	if err := s.db.WithContext(ctx).Order("category_id").Find(&ms).Error; err != nil {
		return nil, translate(op, err)
	}
	vs := make([]domain.Category, 0, len(ms))
	for _, m := range ms {
		vs = append(vs, domain.Category{CategoryID: m.CategoryID, Name: m.Name})
	}
	return vs, nil
}

func (s *Storage) CollectionNameTaken(
	ctx context.Context, name string, m domain.NameMatch,
) (bool, error) {
	const op = "Storage.CollectionNameTaken"

	var n int64
	err := s.db.WithContext(ctx).
		Model(&collection{}).
		Scopes(nameMatches(name, m)).
		Count(&n).Error
	if err != nil {
		return false, translate(op, err)
	}
	return n > 0, nil
}

func (s *Storage) CreateCollection(
	ctx context.Context, name string,
) (domain.Collection, error) {
	const op = "Storage.CreateCollection"

	m := collection{Name: name}
	if err := s.db.WithContext(ctx).Omit("Products").Create(&m).Error; err != nil {
		return domain.Collection{}, translate(op, err)
	}
	return domain.Collection{CollectionID: m.CollectionID, Name: m.Name}, nil
}

func (s *Storage) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	const op = "Storage.ListCollections"

	var ms []collection
	if err := s.db.WithContext(ctx).Order("collection_id").Find(&ms).Error; err != nil {
		return nil, translate(op, err)
	}
	vs := make([]domain.Collection, 0, len(ms))
	for _, m := range ms {
		vs = append(vs, domain.Collection{CollectionID: m.CollectionID, Name: m.Name})
	}
	return vs, nil
}

func (s *Storage) CreateSpell(ctx context.Context, sp *domain.Spell) error {
	const op = "Storage.CreateSpell"

	m := spell{
		Name:        sp.Name,
		Description: sp.Description,
		Price:       sp.Price,
		Quantity:    sp.Quantity,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(op, err)
	}
	sp.SpellID = m.SpellID
	return nil
}

func (s *Storage) ReadSpell(ctx context.Context, spellID uint) (domain.Spell, error) {
	const op = "Storage.ReadSpell"

	var m spell
	if err := s.db.WithContext(ctx).First(&m, "spell_id = ?", spellID).Error; err != nil {
		return domain.Spell{}, translate(op, err)
	}
	return m.domain(), nil
}

func (s *Storage) ListSpells(ctx context.Context) ([]domain.Spell, error) {
	const op = "Storage.ListSpells"

	var ms []spell
	if err := s.db.WithContext(ctx).Order("spell_id").Find(&ms).Error; err != nil {
		return nil, translate(op, err)
	}
	vs := make([]domain.Spell, 0, len(ms))
	for _, m := range ms {
		vs = append(vs, m.domain())
	}
	return vs, nil
}

func (m spell) domain() domain.Spell {
	return domain.Spell{
		SpellID:     m.SpellID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Quantity:    m.Quantity,
	}
}
