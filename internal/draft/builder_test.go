package draft

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

func TestBuilder_AddCommit(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.BeginAdd()
	f := b.Buffer()
	f.Size = " 9 "
	f.Gender = "Male"
	f.MRP = "199.99"
	f.SellingPrice = "149"
	f.Stock = "12"
	f.SKU = " NK-AIR-9 "

	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("Len=%d, want 1", b.Len())
	}
	v := b.Variants()[0]
	if v.Size != "9" || v.Gender != model.GenderMale || v.SKU != "NK-AIR-9" {
		t.Fatalf("committed variant not normalized: %+v", v)
	}
	if !v.MRP.Equal(decimal.RequireFromString("199.99")) || v.CurrentStock != 12 {
		t.Fatalf("coercion wrong: mrp=%s stock=%d", v.MRP, v.CurrentStock)
	}
	if b.Buffer().Size != "" || b.Buffer().Gender != string(model.GenderUnisex) {
		t.Fatalf("buffer not reset after commit: %+v", *b.Buffer())
	}
}

func TestBuilder_BufferNotInCollectionUntilCommit(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.BeginAdd()
	b.Buffer().Size = "10"
	if b.Len() != 0 {
		t.Fatalf("buffer leaked into collection before Commit")
	}
	// Abandoning the buffer loses only the buffer.
	b.BeginAdd()
	if b.Buffer().Size != "" {
		t.Fatalf("BeginAdd did not reset buffer")
	}
	if b.Len() != 0 {
		t.Fatalf("abandoned buffer must not touch collection")
	}
}

func TestBuilder_CommitValidation(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.BeginAdd()
	b.Buffer().Size = "" // required
	if err := b.Commit(); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation for missing size, got %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("failed commit must not append")
	}

	b.Buffer().Size = "8"
	b.Buffer().MRP = "-10"
	if err := b.Commit(); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation for negative price, got %v", err)
	}
	b.Buffer().MRP = "100"
	b.Buffer().Stock = "-1"
	if err := b.Commit(); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation for negative stock, got %v", err)
	}
	// Unparsable numerics coerce to zero instead of failing.
	b.Buffer().Stock = "lots"
	if err := b.Commit(); err != nil {
		t.Fatalf("unparsable stock should coerce, got %v", err)
	}
	if got := b.Variants()[0].CurrentStock; got != 0 {
		t.Fatalf("stock=%d, want 0", got)
	}
}

func TestBuilder_EditCommit(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.Hydrate([]model.Variant{
		{Gender: model.GenderUnisex, Size: "8", CurrentStock: 4},
		{Gender: model.GenderFemale, Size: "7", CurrentStock: 2},
	})

	if err := b.BeginEdit(5); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation for out-of-range edit, got %v", err)
	}
	if err := b.BeginEdit(1); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if b.Buffer().Size != "7" || b.Buffer().Stock != "2" {
		t.Fatalf("buffer not hydrated from variant: %+v", *b.Buffer())
	}
	b.Buffer().Stock = "9"
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if b.Len() != 2 {
		t.Fatalf("edit commit must replace, not append: len=%d", b.Len())
	}
	if got := b.Variants()[1].CurrentStock; got != 9 {
		t.Fatalf("stock=%d, want 9", got)
	}
}

func TestBuilder_Remove(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.Hydrate([]model.Variant{{Size: "8"}, {Size: "9"}, {Size: "10"}})

	removed, err := b.Remove(1, func() bool { return false })
	if err != nil || removed {
		t.Fatalf("declined removal: removed=%v err=%v", removed, err)
	}
	if b.Len() != 3 {
		t.Fatalf("declined removal must keep collection")
	}

	removed, err = b.Remove(1, func() bool { return true })
	if err != nil || !removed {
		t.Fatalf("confirmed removal: removed=%v err=%v", removed, err)
	}
	got := b.Variants()
	if len(got) != 2 || got[0].Size != "8" || got[1].Size != "10" {
		t.Fatalf("wrong variants after removal: %+v", got)
	}

	if _, err := b.Remove(7, func() bool { return true }); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation for out-of-range removal, got %v", err)
	}
}

func TestBuilder_RemoveEditedIndexResetsBuffer(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.Hydrate([]model.Variant{{Size: "8"}, {Size: "9"}})
	if err := b.BeginEdit(1); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if _, err := b.Remove(1, func() bool { return true }); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// The edit target is gone; a commit now must append, not write
	// through a stale index.
	b.Buffer().Size = "11"
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit after removing edited variant: %v", err)
	}
	got := b.Variants()
	if len(got) != 2 || got[1].Size != "11" {
		t.Fatalf("commit after removal went wrong: %+v", got)
	}
}

func TestParseGender(t *testing.T) {
	t.Parallel()

	cases := map[string]model.Gender{
		"male":    model.GenderMale,
		" FEMALE": model.GenderFemale,
		"kids":    model.GenderKids,
		"unisex":  model.GenderUnisex,
		"":        model.GenderUnisex,
		"robot":   model.GenderUnisex,
	}
	for in, want := range cases {
		if got := parseGender(in); got != want {
			t.Fatalf("parseGender(%q)=%s, want %s", in, got, want)
		}
	}
}
