// Package draft holds the client-side editing state for one product: the
// variant collection being assembled and the pure transformation into the
// submission payload.
package draft

import (
	"fmt"
	"strings"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// VariantForm is the transient edit buffer for one variant. All fields
// are raw strings as typed; nothing is coerced until Commit.
type VariantForm struct {
	Gender       string
	Size         string
	Color        string
	MRP          string
	SellingPrice string
	CostPrice    string
	SKU          string
	Barcode      string
	Stock        string
}

// Builder maintains the ordered variant collection plus one edit buffer.
// The buffer is never implicitly part of the collection; only Commit
// moves data from buffer to collection.
type Builder struct {
	variants []model.Variant
	buffer   VariantForm
	editing  int // index being edited, -1 when adding
}

// NewBuilder returns an empty builder ready for BeginAdd.
func NewBuilder() *Builder {
	return &Builder{editing: -1, buffer: defaultForm()}
}

func defaultForm() VariantForm {
	return VariantForm{Gender: string(model.GenderUnisex)}
}

// Hydrate replaces the collection with the variants of an existing
// product (edit flow) and resets the buffer.
func (b *Builder) Hydrate(variants []model.Variant) {
	b.variants = append([]model.Variant(nil), variants...)
	b.buffer = defaultForm()
	b.editing = -1
}

// BeginAdd resets the edit buffer to defaults for a new variant.
func (b *Builder) BeginAdd() {
	b.buffer = defaultForm()
	b.editing = -1
}

// BeginEdit copies the variant at index into the edit buffer.
func (b *Builder) BeginEdit(index int) error {
	if index < 0 || index >= len(b.variants) {
		return fmt.Errorf("%w: no variant at index %d", errs.ErrValidation, index)
	}
	v := b.variants[index]
	b.buffer = VariantForm{
		Gender:       string(v.Gender),
		Size:         v.Size,
		Color:        v.Color,
		MRP:          v.MRP.String(),
		SellingPrice: v.SellingPrice.String(),
		CostPrice:    v.CostPrice.String(),
		SKU:          v.SKU,
		Barcode:      v.Barcode,
		Stock:        fmt.Sprint(v.CurrentStock),
	}
	b.editing = index
	return nil
}

// Buffer returns the edit buffer for mutation by the form.
func (b *Builder) Buffer() *VariantForm {
	return &b.buffer
}

// Commit validates and coerces the buffer, then appends it (add flow) or
// replaces the variant being edited. On validation failure the buffer and
// the collection are both left unchanged.
func (b *Builder) Commit() error {
	v, err := b.buffer.toVariant()
	if err != nil {
		return err
	}
	if b.editing >= 0 {
		if b.editing >= len(b.variants) {
			return fmt.Errorf("%w: stale edit index %d", errs.ErrValidation, b.editing)
		}
		b.variants[b.editing] = v
	} else {
		b.variants = append(b.variants, v)
	}
	b.buffer = defaultForm()
	b.editing = -1
	return nil
}

// Remove deletes the variant at index after confirm agrees. Indices of
// subsequent variants shift down; callers must not cache indices across
// a removal. Returns whether a variant was removed.
func (b *Builder) Remove(index int, confirm func() bool) (bool, error) {
	if index < 0 || index >= len(b.variants) {
		return false, fmt.Errorf("%w: no variant at index %d", errs.ErrValidation, index)
	}
	if confirm == nil || !confirm() {
		return false, nil
	}
	b.variants = append(b.variants[:index], b.variants[index+1:]...)
	if b.editing == index {
		b.editing = -1
		b.buffer = defaultForm()
	}
	return true, nil
}

// Variants returns a copy of the committed collection.
func (b *Builder) Variants() []model.Variant {
	return append([]model.Variant(nil), b.variants...)
}

// Len reports the number of committed variants.
func (b *Builder) Len() int { return len(b.variants) }

func (f VariantForm) toVariant() (model.Variant, error) {
	size := strings.TrimSpace(f.Size)
	if size == "" {
		return model.Variant{}, fmt.Errorf("%w: size is required", errs.ErrValidation)
	}
	gender := parseGender(f.Gender)
	mrp, sell, cost := Price(f.MRP), Price(f.SellingPrice), Price(f.CostPrice)
	if mrp.IsNegative() || sell.IsNegative() || cost.IsNegative() {
		return model.Variant{}, fmt.Errorf("%w: prices must be zero or positive", errs.ErrValidation)
	}
	stock := Quantity(f.Stock)
	if stock < 0 {
		return model.Variant{}, fmt.Errorf("%w: stock must be zero or positive", errs.ErrValidation)
	}
	return model.Variant{
		Gender:       gender,
		Size:         size,
		Color:        strings.TrimSpace(f.Color),
		MRP:          mrp,
		SellingPrice: sell,
		CostPrice:    cost,
		SKU:          strings.TrimSpace(f.SKU),
		Barcode:      strings.TrimSpace(f.Barcode),
		CurrentStock: stock,
	}, nil
}

func parseGender(s string) model.Gender {
	switch model.Gender(strings.ToLower(strings.TrimSpace(s))) {
	case model.GenderMale:
		return model.GenderMale
	case model.GenderFemale:
		return model.GenderFemale
	case model.GenderKids:
		return model.GenderKids
	default:
		return model.GenderUnisex
	}
}
