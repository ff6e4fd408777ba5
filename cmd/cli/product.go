package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rkohli/stockpilot/internal/authz"
	"github.com/rkohli/stockpilot/internal/draft"
	"github.com/rkohli/stockpilot/internal/imaging"
	"github.com/rkohli/stockpilot/internal/model"
	"github.com/rkohli/stockpilot/internal/submit"
)

// variantFlags collects repeatable -variant values.
type variantFlags []string

func (v *variantFlags) String() string { return strings.Join(*v, "; ") }

func (v *variantFlags) Set(s string) error {
	*v = append(*v, s)
	return nil
}

func cmdProducts(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	q := fs.String("q", "", "filter by item id, name, model or variant sku/barcode")
	_ = fs.Parse(args)

	a.store.Resolve(ctx)
	if !a.store.Session().IsAuthenticated {
		fail(fmt.Errorf("not logged in (run: stockpilot login)"))
	}
	products, err := a.client.Products(ctx)
	if err != nil {
		fail(err)
	}
	printJSON(filterProducts(products, *q))
}

func cmdProductAdd(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("product-add", flag.ExitOnError)
	d, variants, image := draftFlags(fs)
	_ = fs.Parse(args)

	if _, err := a.requireAction(ctx, authz.ActionEditProduct); err != nil {
		fail(err)
	}

	b := draft.NewBuilder()
	for _, spec := range *variants {
		b.BeginAdd()
		if err := applyVariantSpec(b.Buffer(), spec); err != nil {
			fail(err)
		}
		if err := b.Commit(); err != nil {
			fail(err)
		}
	}
	d.Variants = b.Variants()

	staging, err := stageImage(ctx, a, *image)
	if err != nil {
		fail(err)
	}

	pipe := submit.New(a.client, a.refreshCatalog, a.logger)
	product, err := pipe.Create(ctx, *d, staging)
	if err != nil {
		fail(err)
	}
	printJSON(product)
}

func cmdProductEdit(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("product-edit", flag.ExitOnError)
	id := fs.Int("id", 0, "product id")
	d, variants, image := draftFlags(fs)
	clearImage := fs.Bool("clear-image", false, "drop the stored product image")
	_ = fs.Parse(args)

	if *id <= 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if _, err := a.requireAction(ctx, authz.ActionEditProduct); err != nil {
		fail(err)
	}

	current, err := findProduct(ctx, a, *id)
	if err != nil {
		fail(err)
	}
	base := model.DraftFromProduct(current)

	// Flags that were not given keep the stored value.
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["item-id"] {
		base.ItemID = d.ItemID
	}
	if set["name"] {
		base.ItemName = d.ItemName
	}
	if set["model"] {
		base.Model = d.Model
	}
	if set["desc"] {
		base.Description = d.Description
	}
	if set["category"] {
		base.SelectCategory(d.CategoryID)
	}
	if set["subcategory"] {
		base.SubcategoryID = d.SubcategoryID
	}
	if set["brand"] {
		base.BrandID = d.BrandID
	}
	if set["low-stock"] {
		base.LowStockThreshold = d.LowStockThreshold
	}

	if len(*variants) > 0 {
		b := draft.NewBuilder()
		b.Hydrate(base.Variants)
		for _, spec := range *variants {
			b.BeginAdd()
			if err := applyVariantSpec(b.Buffer(), spec); err != nil {
				fail(err)
			}
			if err := b.Commit(); err != nil {
				fail(err)
			}
		}
		base.Variants = b.Variants()
	}

	staging, err := stageImage(ctx, a, *image)
	if err != nil {
		fail(err)
	}
	if *clearImage {
		staging.Clear(&base)
	}

	pipe := submit.New(a.client, a.refreshCatalog, a.logger)
	product, err := pipe.Update(ctx, *id, base, staging)
	if err != nil {
		fail(err)
	}
	printJSON(product)
}

func cmdProductRemove(ctx context.Context, a *app, args []string) {
	fs := flag.NewFlagSet("product-rm", flag.ExitOnError)
	id := fs.Int("id", 0, "product id")
	yes := fs.Bool("yes", false, "skip confirmation")
	_ = fs.Parse(args)

	if *id <= 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if _, err := a.requireAction(ctx, authz.ActionDeleteProduct); err != nil {
		fail(err)
	}
	if !*yes && !confirm(fmt.Sprintf("delete product %d?", *id)) {
		fmt.Println("aborted")
		return
	}
	if err := a.client.DeleteProduct(ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

// draftFlags registers the shared product fields on fs and returns the
// draft they populate, the repeatable variant specs, and the image path.
func draftFlags(fs *flag.FlagSet) (*model.ProductDraft, *variantFlags, *string) {
	d := &model.ProductDraft{}
	fs.StringVar(&d.ItemID, "item-id", "", "unique item id")
	fs.StringVar(&d.ItemName, "name", "", "item name")
	fs.StringVar(&d.Model, "model", "", "model")
	fs.StringVar(&d.Description, "desc", "", "description")
	fs.StringVar(&d.CategoryID, "category", "", "category id")
	fs.StringVar(&d.SubcategoryID, "subcategory", "", "subcategory id")
	fs.StringVar(&d.BrandID, "brand", "", "brand id")
	fs.StringVar(&d.LowStockThreshold, "low-stock", "", "low stock threshold")
	variants := &variantFlags{}
	fs.Var(variants, "variant", "variant spec: size=9,gender=male,mrp=100,sell=90,... (repeatable)")
	image := fs.String("image", "", "path to a product image to upload")
	return d, variants, image
}

// applyVariantSpec fills the edit buffer from a comma separated k=v spec.
func applyVariantSpec(f *draft.VariantForm, spec string) error {
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("validation: bad variant field %q, want key=value", pair)
		}
		v = strings.TrimSpace(v)
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "gender":
			f.Gender = v
		case "size":
			f.Size = v
		case "color":
			f.Color = v
		case "mrp":
			f.MRP = v
		case "sell", "selling_price":
			f.SellingPrice = v
		case "cost", "cost_price":
			f.CostPrice = v
		case "sku":
			f.SKU = v
		case "barcode":
			f.Barcode = v
		case "qty", "stock":
			f.Stock = v
		default:
			return fmt.Errorf("validation: unknown variant field %q", k)
		}
	}
	return nil
}

// stageImage stages a local file for upload; an empty path stages nothing.
func stageImage(ctx context.Context, a *app, path string) (*imaging.Staging, error) {
	staging := imaging.New(a.client)
	if path == "" {
		return staging, nil
	}
	if err := staging.Pick(ctx, imaging.FilePicker{Path: path}, imaging.SourceGallery); err != nil {
		return nil, err
	}
	return staging, nil
}

func findProduct(ctx context.Context, a *app, id int) (model.Product, error) {
	products, err := a.client.Products(ctx)
	if err != nil {
		return model.Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, fmt.Errorf("product %d not found", id)
}

// filterProducts mirrors the backend-free search over the loaded list:
// case-insensitive match on item id, name, model, brand name, or any
// variant sku or barcode.
func filterProducts(products []model.Product, q string) []model.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products
	}
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if matchProduct(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matchProduct(p model.Product, q string) bool {
	if strings.Contains(strings.ToLower(p.ItemID), q) ||
		strings.Contains(strings.ToLower(p.ItemName), q) ||
		strings.Contains(strings.ToLower(p.Model), q) ||
		strings.Contains(strings.ToLower(p.BrandName), q) {
		return true
	}
	for _, v := range p.Variants {
		if strings.Contains(strings.ToLower(v.SKU), q) ||
			strings.Contains(strings.ToLower(v.Barcode), q) {
			return true
		}
	}
	return false
}

// refreshCatalog reloads the cached reference lists after a successful
// submission so stale names do not linger.
func (a *app) refreshCatalog(ctx context.Context) error {
	if err := a.cache.LoadCategories(ctx); err != nil {
		return err
	}
	return a.cache.LoadBrands(ctx)
}

// validateUserForm mirrors the server-side registration constraints so a
// bad form fails before the request is sent.
func validateUserForm(username, email, password, role string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("validation: username is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("validation: email looks invalid")
	}
	if len(password) < 6 {
		return fmt.Errorf("validation: password must be at least 6 characters")
	}
	switch model.Role(role) {
	case model.RoleAdmin, model.RoleManager, model.RoleEmployee:
		return nil
	default:
		return fmt.Errorf("validation: unknown role %q", role)
	}
}
