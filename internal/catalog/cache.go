// Package catalog caches the reference data (categories, subcategories,
// brands) that product classification selects from. The cache is
// read-mostly; only the create operations append to it.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// API is the slice of the backend the cache needs.
type API interface {
	Categories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (model.Category, error)
	Brands(ctx context.Context) ([]model.Brand, error)
	CreateBrand(ctx context.Context, name string) (model.Brand, error)
	Subcategories(ctx context.Context, categoryID int) ([]model.Subcategory, error)
	CreateSubcategory(ctx context.Context, name string, categoryID int) (model.Subcategory, error)
}

// Cache holds the local reference lists. A fetch failure leaves the
// previously cached list intact.
type Cache struct {
	mu            sync.Mutex
	api           API
	categories    []model.Category
	brands        []model.Brand
	subcategories []model.Subcategory
	subcatScope   int  // category id the subcategory list is scoped to
	subcatLoaded  bool // true once a fetch for subcatScope completed
}

// New constructs an empty cache over the given backend.
func New(a API) *Cache {
	return &Cache{api: a}
}

// LoadCategories fetches and replaces the full category list.
func (c *Cache) LoadCategories(ctx context.Context) error {
	cats, err := c.api.Categories(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.categories = cats
	c.mu.Unlock()
	return nil
}

// LoadBrands fetches and replaces the full brand list.
func (c *Cache) LoadBrands(ctx context.Context) error {
	brands, err := c.api.Brands(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.brands = brands
	c.mu.Unlock()
	return nil
}

// LoadSubcategories fetches the subcategory list scoped to categoryID.
// categoryID 0 clears the list without fetching. Reloading the scope that
// is already loaded is a no-op.
func (c *Cache) LoadSubcategories(ctx context.Context, categoryID int) error {
	c.mu.Lock()
	if categoryID == 0 {
		c.subcategories = nil
		c.subcatScope = 0
		c.subcatLoaded = false
		c.mu.Unlock()
		return nil
	}
	if c.subcatLoaded && c.subcatScope == categoryID {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	subs, err := c.api.Subcategories(ctx, categoryID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.subcategories = subs
	c.subcatScope = categoryID
	c.subcatLoaded = true
	c.mu.Unlock()
	return nil
}

// CreateCategory creates a category, appends it to the local list, and
// returns its assigned id so the caller can auto-select it.
func (c *Cache) CreateCategory(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: category name is required", errs.ErrValidation)
	}
	cat, err := c.api.CreateCategory(ctx, name)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.categories = append(c.categories, cat)
	c.mu.Unlock()
	return cat.ID, nil
}

// CreateBrand creates a brand, appends it, and returns its assigned id.
func (c *Cache) CreateBrand(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: brand name is required", errs.ErrValidation)
	}
	brand, err := c.api.CreateBrand(ctx, name)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.brands = append(c.brands, brand)
	c.mu.Unlock()
	return brand.ID, nil
}

// CreateSubcategory creates a subcategory under categoryID, appends it
// when it belongs to the currently loaded scope, and returns its id.
func (c *Cache) CreateSubcategory(ctx context.Context, name string, categoryID int) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: subcategory name is required", errs.ErrValidation)
	}
	if categoryID <= 0 {
		return 0, fmt.Errorf("%w: select a category first", errs.ErrValidation)
	}
	sub, err := c.api.CreateSubcategory(ctx, name, categoryID)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	if c.subcatLoaded && c.subcatScope == categoryID {
		c.subcategories = append(c.subcategories, sub)
	}
	c.mu.Unlock()
	return sub.ID, nil
}

// Categories returns a copy of the cached category list.
func (c *Cache) Categories() []model.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Category(nil), c.categories...)
}

// Brands returns a copy of the cached brand list.
func (c *Cache) Brands() []model.Brand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Brand(nil), c.brands...)
}

// Subcategories returns a copy of the cached subcategory list.
func (c *Cache) Subcategories() []model.Subcategory {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Subcategory(nil), c.subcategories...)
}
