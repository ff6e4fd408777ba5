package draft

import (
	"fmt"
	"strings"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// Assemble merges the draft's base fields, its variant collection, and an
// already-uploaded image URL into the submission payload. It is a pure
// transformation and the single hard gate before any network call: an
// unsubmittable draft never leaves this function.
//
// imageURL is the server-assigned URL of a freshly uploaded image; when
// empty, any persisted URL already on the draft is kept.
func Assemble(d model.ProductDraft, imageURL string) (model.ProductPayload, error) {
	if strings.TrimSpace(d.ItemID) == "" {
		return model.ProductPayload{}, fmt.Errorf("%w: item id is required", errs.ErrValidation)
	}
	if strings.TrimSpace(d.ItemName) == "" {
		return model.ProductPayload{}, fmt.Errorf("%w: item name is required", errs.ErrValidation)
	}
	if len(d.Variants) == 0 {
		return model.ProductPayload{}, fmt.Errorf("%w: at least one variant is required", errs.ErrValidation)
	}
	for i, v := range d.Variants {
		if strings.TrimSpace(v.Size) == "" {
			return model.ProductPayload{}, fmt.Errorf("%w: variant[%d] size is required", errs.ErrValidation, i)
		}
	}

	if imageURL == "" {
		imageURL = d.ImageURL
	}
	return model.ProductPayload{
		ItemID:            strings.TrimSpace(d.ItemID),
		ItemName:          strings.TrimSpace(d.ItemName),
		CategoryID:        ForeignKey(d.CategoryID),
		SubcategoryID:     ForeignKey(d.SubcategoryID),
		BrandID:           ForeignKey(d.BrandID),
		Model:             strings.TrimSpace(d.Model),
		Description:       strings.TrimSpace(d.Description),
		ImageURL:          imageURL,
		LowStockThreshold: Quantity(d.LowStockThreshold),
		Variants:          append([]model.Variant(nil), d.Variants...),
	}, nil
}
