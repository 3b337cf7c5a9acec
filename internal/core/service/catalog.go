package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"golang.org/x/sync/errgroup"
)

var (
	_ port.ProductsCatalog    = (*Catalog)(nil)
	_ port.CategoriesCatalog  = (*Catalog)(nil)
	_ port.CollectionsCatalog = (*Catalog)(nil)
	_ port.SpellsCatalog      = (*Catalog)(nil)
)

const imageKeyPrefix = "products/"

type Catalog struct {
	storage   port.CatalogStorage
	blobs     port.BlobStore
	nameMatch domain.NameMatch
	now       func() time.Time
}

func NewCatalog(
	storage port.CatalogStorage, blobs port.BlobStore, nameMatch domain.NameMatch,
) *Catalog {
	if nameMatch == "" {
		nameMatch = domain.NameMatchPrefix
	}
	return &Catalog{
		storage:   storage,
		blobs:     blobs,
		nameMatch: nameMatch,
		now:       time.Now,
	}
}

func (c *Catalog) AddProduct(
	ctx context.Context, np domain.NewProduct, images []domain.ImageUpload,
) (domain.Product, error) {
	const op = "Catalog.AddProduct"

	if err := np.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	uploaded, err := c.uploadImages(ctx, images)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	var created domain.Product
	err = c.storage.Do(ctx, func(tx port.TxStorage) error {
		p := np.Product()
		if err := tx.CreateProduct(ctx, &p); err != nil {
			return err
		}
		if err := tx.CreateImages(ctx, imageRows(p.ProductID, uploaded)); err != nil {
			return err
		}
		stored, err := tx.ReadProduct(ctx, p.ProductID)
		if err != nil {
			return err
		}
		created = stored
		return tx.Enqueue(ctx,
			domain.NewCatalogEventMessage(domain.ProductCreated, stored, c.now()),
		)
	})
	if err != nil {
		c.compensate(ctx, op, uploaded)
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (c *Catalog) GetProduct(
	ctx context.Context, productID uint,
) (domain.Product, error) {
	const op = "Catalog.GetProduct"

	p, err := c.storage.ReadProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (c *Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Catalog.ListProducts"

	ps, err := c.storage.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// ListProductsByCategory reports ErrNotFound when the category holds no
// products.
func (c *Catalog) ListProductsByCategory(
	ctx context.Context, categoryID uint,
) ([]domain.Product, error) {
	const op = "Catalog.ListProductsByCategory"

	ps, err := c.storage.ListProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return ps, nil
}

func (c *Catalog) ListProductsByCollection(
	ctx context.Context, collectionID uint,
) ([]domain.Product, error) {
	const op = "Catalog.ListProductsByCollection"

	ps, err := c.storage.ListProductsByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// UpdateProduct writes the present fields of upd. When images are given they
// replace the stored set and the old binaries are deleted after commit.
// Without images the stored set is kept.
func (c *Catalog) UpdateProduct(
	ctx context.Context,
	productID uint,
	upd domain.ProductUpdate,
	images []domain.ImageUpload,
) (domain.Product, error) {
	const op = "Catalog.UpdateProduct"

	if err := upd.Validate(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := c.storage.ReadProduct(ctx, productID); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	uploaded, err := c.uploadImages(ctx, images)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	var updated domain.Product
	err = c.storage.Do(ctx, func(tx port.TxStorage) error {
		if err := tx.UpdateProduct(ctx, productID, upd); err != nil {
			return err
		}

		var msgs []domain.OutboxMessage
		if len(images) != 0 {
			old, err := tx.ListImages(ctx, productID)
			if err != nil {
				return err
			}
			if err := tx.DeleteImages(ctx, productID); err != nil {
				return err
			}
			if err := tx.CreateImages(ctx, imageRows(productID, uploaded)); err != nil {
				return err
			}
			msgs = append(msgs, c.blobDeletes(old)...)
		}

		stored, err := tx.ReadProduct(ctx, productID)
		if err != nil {
			return err
		}
		updated = stored
		msgs = append(msgs,
			domain.NewCatalogEventMessage(domain.ProductUpdated, stored, c.now()),
		)
		return tx.Enqueue(ctx, msgs...)
	})
	if err != nil {
		c.compensate(ctx, op, uploaded)
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// DeleteProduct removes the product with its images and the cart items
// referencing it. Image binaries are deleted after commit.
func (c *Catalog) DeleteProduct(ctx context.Context, productID uint) error {
	const op = "Catalog.DeleteProduct"

	err := c.storage.Do(ctx, func(tx port.TxStorage) error {
		p, err := tx.ReadProduct(ctx, productID)
		if err != nil {
			return err
		}
		old, err := tx.ListImages(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.DeleteImages(ctx, productID); err != nil {
			return err
		}
		if err := tx.DeleteCartItemsByProduct(ctx, productID); err != nil {
			return err
		}
		if err := tx.DeleteProduct(ctx, productID); err != nil {
			return err
		}

		msgs := c.blobDeletes(old)
		msgs = append(msgs,
			domain.NewCatalogEventMessage(domain.ProductDeleted, p, c.now()),
		)
		return tx.Enqueue(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Catalog) AddCategory(ctx context.Context, name string) (domain.Category, error) {
	const op = "Catalog.AddCategory"

	name, err := domain.ValidateName(name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	taken, err := c.storage.CategoryNameTaken(ctx, name, c.nameMatch)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return domain.Category{}, fmt.Errorf("%s: category %q: %w", op, name, domain.ErrConflict)
	}
	cat, err := c.storage.CreateCategory(ctx, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return cat, nil
}

func (c *Catalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Catalog.ListCategories"

	vs, err := c.storage.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (c *Catalog) AddCollection(ctx context.Context, name string) (domain.Collection, error) {
	const op = "Catalog.AddCollection"

	name, err := domain.ValidateName(name)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("%s: %w", op, err)
	}
	taken, err := c.storage.CollectionNameTaken(ctx, name, c.nameMatch)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return domain.Collection{}, fmt.Errorf("%s: collection %q: %w", op, name, domain.ErrConflict)
	}
	col, err := c.storage.CreateCollection(ctx, name)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("%s: %w", op, err)
	}
	return col, nil
}

func (c *Catalog) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	const op = "Catalog.ListCollections"

	vs, err := c.storage.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (c *Catalog) AddSpell(ctx context.Context, ns domain.NewSpell) (domain.Spell, error) {
	const op = "Catalog.AddSpell"

	if err := ns.Validate(); err != nil {
		return domain.Spell{}, fmt.Errorf("%s: %w", op, err)
	}
	s := ns.Spell()
	if err := c.storage.CreateSpell(ctx, &s); err != nil {
		return domain.Spell{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (c *Catalog) GetSpell(ctx context.Context, spellID uint) (domain.Spell, error) {
	const op = "Catalog.GetSpell"

	s, err := c.storage.ReadSpell(ctx, spellID)
	if err != nil {
		return domain.Spell{}, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func (c *Catalog) ListSpells(ctx context.Context) ([]domain.Spell, error) {
	const op = "Catalog.ListSpells"

	vs, err := c.storage.ListSpells(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// uploadImages stores the images concurrently and waits for all of them.
// On failure the already stored objects are scheduled for deletion.
func (c *Catalog) uploadImages(
	ctx context.Context, images []domain.ImageUpload,
) ([]domain.BlobObject, error) {
	const op = "Catalog.uploadImages"

	if len(images) == 0 {
		return nil, nil
	}

	keys := make([]string, len(images))
	for i, img := range images {
		ext, err := img.Ext()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys[i] = imageKeyPrefix + uuid.NewString() + ext
	}

	objs := make([]domain.BlobObject, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			obj, err := c.putImage(gctx, keys[i], img)
			if err != nil {
				return err
			}
			objs[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var stored []domain.BlobObject
		for _, obj := range objs {
			if obj.Key != "" {
				stored = append(stored, obj)
			}
		}
		c.compensate(ctx, op, stored)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return objs, nil
}

func (c *Catalog) putImage(
	ctx context.Context, key string, img domain.ImageUpload,
) (domain.BlobObject, error) {
	rc, err := img.Open()
	if err != nil {
		return domain.BlobObject{}, err
	}
	defer func() { _ = rc.Close() }()
	return c.blobs.Put(ctx, key, img.MediaType(), rc)
}

// compensate schedules deletion of blobs whose rows were never committed.
func (c *Catalog) compensate(
	ctx context.Context, op string, objs []domain.BlobObject,
) {
	if len(objs) == 0 {
		return
	}
	log := slog.With("op", op)

	msgs := make([]domain.OutboxMessage, 0, len(objs))
	keys := make([]string, 0, len(objs))
	for _, obj := range objs {
		msgs = append(msgs, domain.NewBlobDeleteMessage(obj.Key, c.now()))
		keys = append(keys, obj.Key)
	}
	err := c.storage.Enqueue(context.WithoutCancel(ctx), msgs...)
	if err != nil {
		log.Error("failed to schedule deletion of orphaned blobs",
			"keys", keys, "err", err)
		return
	}
	log.Warn("orphaned blobs scheduled for deletion", "keys", keys)
}

func (c *Catalog) blobDeletes(imgs []domain.ProductImage) []domain.OutboxMessage {
	msgs := make([]domain.OutboxMessage, 0, len(imgs)+1)
	for _, img := range imgs {
		msgs = append(msgs, domain.NewBlobDeleteMessage(img.Name, c.now()))
	}
	return msgs
}

func imageRows(productID uint, objs []domain.BlobObject) []domain.ProductImage {
	imgs := make([]domain.ProductImage, 0, len(objs))
	for _, obj := range objs {
		imgs = append(imgs, domain.ProductImage{
			ProductID: productID,
			Name:      obj.Key,
			URL:       obj.URL,
		})
	}
	return imgs
}
