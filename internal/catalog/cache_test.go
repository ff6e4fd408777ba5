package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

type fakeCatalogAPI struct {
	categories []model.Category
	brands     []model.Brand
	subs       map[int][]model.Subcategory
	err        error

	categoryHits int
	brandHits    int
	subHits      int
	nextID       int
}

var _ API = (*fakeCatalogAPI)(nil)

func (f *fakeCatalogAPI) Categories(context.Context) ([]model.Category, error) {
	f.categoryHits++
	return f.categories, f.err
}

func (f *fakeCatalogAPI) CreateCategory(_ context.Context, name string) (model.Category, error) {
	if f.err != nil {
		return model.Category{}, f.err
	}
	f.nextID++
	return model.Category{ID: f.nextID, Name: name}, nil
}

func (f *fakeCatalogAPI) Brands(context.Context) ([]model.Brand, error) {
	f.brandHits++
	return f.brands, f.err
}

func (f *fakeCatalogAPI) CreateBrand(_ context.Context, name string) (model.Brand, error) {
	if f.err != nil {
		return model.Brand{}, f.err
	}
	f.nextID++
	return model.Brand{ID: f.nextID, Name: name}, nil
}

func (f *fakeCatalogAPI) Subcategories(_ context.Context, categoryID int) ([]model.Subcategory, error) {
	f.subHits++
	return f.subs[categoryID], f.err
}

func (f *fakeCatalogAPI) CreateSubcategory(_ context.Context, name string, categoryID int) (model.Subcategory, error) {
	if f.err != nil {
		return model.Subcategory{}, f.err
	}
	f.nextID++
	return model.Subcategory{ID: f.nextID, Name: name, CategoryID: categoryID}, nil
}

func TestCache_LoadCategories(t *testing.T) {
	t.Parallel()

	f := &fakeCatalogAPI{categories: []model.Category{{ID: 1, Name: "Footwear"}}}
	c := New(f)
	if err := c.LoadCategories(context.Background()); err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	got := c.Categories()
	if len(got) != 1 || got[0].Name != "Footwear" {
		t.Fatalf("categories=%+v", got)
	}
}

func TestCache_FetchFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	f := &fakeCatalogAPI{categories: []model.Category{{ID: 1, Name: "Footwear"}}}
	c := New(f)
	if err := c.LoadCategories(context.Background()); err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}

	f.err = errors.New("backend down")
	if err := c.LoadCategories(context.Background()); err == nil {
		t.Fatalf("want fetch failure")
	}
	if got := c.Categories(); len(got) != 1 {
		t.Fatalf("failed fetch must keep cached list, got %+v", got)
	}
}

func TestCache_SubcategoryScope(t *testing.T) {
	t.Parallel()

	f := &fakeCatalogAPI{subs: map[int][]model.Subcategory{
		5: {{ID: 51, Name: "Running", CategoryID: 5}},
		7: {{ID: 71, Name: "Formal", CategoryID: 7}},
	}}
	c := New(f)

	if err := c.LoadSubcategories(context.Background(), 5); err != nil {
		t.Fatalf("load scope 5: %v", err)
	}
	if f.subHits != 1 {
		t.Fatalf("subHits=%d, want 1", f.subHits)
	}
	// Same scope again is a no-op.
	if err := c.LoadSubcategories(context.Background(), 5); err != nil {
		t.Fatalf("reload scope 5: %v", err)
	}
	if f.subHits != 1 {
		t.Fatalf("same-scope reload must not fetch, subHits=%d", f.subHits)
	}
	// New scope fetches and replaces.
	if err := c.LoadSubcategories(context.Background(), 7); err != nil {
		t.Fatalf("load scope 7: %v", err)
	}
	if f.subHits != 2 {
		t.Fatalf("subHits=%d, want 2", f.subHits)
	}
	got := c.Subcategories()
	if len(got) != 1 || got[0].ID != 71 {
		t.Fatalf("subcategories=%+v", got)
	}
	// Scope 0 clears without fetching.
	if err := c.LoadSubcategories(context.Background(), 0); err != nil {
		t.Fatalf("clear scope: %v", err)
	}
	if f.subHits != 2 {
		t.Fatalf("clearing must not fetch, subHits=%d", f.subHits)
	}
	if got := c.Subcategories(); len(got) != 0 {
		t.Fatalf("subcategories not cleared: %+v", got)
	}
	// After clearing, the old scope fetches again.
	if err := c.LoadSubcategories(context.Background(), 5); err != nil {
		t.Fatalf("reload after clear: %v", err)
	}
	if f.subHits != 3 {
		t.Fatalf("subHits=%d, want 3", f.subHits)
	}
}

func TestCache_CreateAppendsAndReturnsID(t *testing.T) {
	t.Parallel()

	f := &fakeCatalogAPI{}
	c := New(f)

	id, err := c.CreateCategory(context.Background(), "  Apparel  ")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if id == 0 {
		t.Fatalf("want assigned id")
	}
	got := c.Categories()
	if len(got) != 1 || got[0].Name != "Apparel" {
		t.Fatalf("created category not appended: %+v", got)
	}

	bid, err := c.CreateBrand(context.Background(), "Nike")
	if err != nil || bid == 0 {
		t.Fatalf("CreateBrand: id=%d err=%v", bid, err)
	}
	if len(c.Brands()) != 1 {
		t.Fatalf("created brand not appended")
	}
}

func TestCache_CreateValidation(t *testing.T) {
	t.Parallel()

	c := New(&fakeCatalogAPI{})
	if _, err := c.CreateCategory(context.Background(), "   "); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if _, err := c.CreateBrand(context.Background(), ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if _, err := c.CreateSubcategory(context.Background(), "Running", 0); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("subcategory without parent: want ErrValidation, got %v", err)
	}
}

func TestCache_CreateSubcategoryScopeAware(t *testing.T) {
	t.Parallel()

	f := &fakeCatalogAPI{subs: map[int][]model.Subcategory{5: {}}}
	c := New(f)
	if err := c.LoadSubcategories(context.Background(), 5); err != nil {
		t.Fatalf("load scope: %v", err)
	}

	// In-scope create appends locally.
	if _, err := c.CreateSubcategory(context.Background(), "Running", 5); err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}
	if got := c.Subcategories(); len(got) != 1 || got[0].Name != "Running" {
		t.Fatalf("in-scope create not appended: %+v", got)
	}
	// Out-of-scope create succeeds but does not pollute the loaded list.
	if _, err := c.CreateSubcategory(context.Background(), "Formal", 7); err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}
	if got := c.Subcategories(); len(got) != 1 {
		t.Fatalf("out-of-scope create leaked into list: %+v", got)
	}
}
