// Package model defines domain entities shared by the client components.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The backend reads prices as JSON numbers, not strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Role is the server-assigned access level of an account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Gender narrows a variant to a target wearer group.
type Gender string

const (
	GenderUnisex Gender = "unisex"
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderKids   Gender = "kids"
)

// User is the identity returned by the login and profile endpoints.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Session is the current authenticated state of the client.
// IsAuthenticated stays false until a profile fetch with a stored token succeeds.
type Session struct {
	User            User
	IsAuthenticated bool
	IsResolving     bool
}

// Category is a top-level product classification.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Subcategory is always scoped to a parent category.
type Subcategory struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	CategoryID  int       `json:"category_id"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Brand is a product manufacturer label.
type Brand struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Variant is one purchasable configuration of a product with its own
// pricing and stock. It is submitted embedded in the product payload,
// never through a separate call.
type Variant struct {
	Gender       Gender          `json:"gender"`
	Size         string          `json:"size"`
	Color        string          `json:"color,omitempty"`
	MRP          decimal.Decimal `json:"mrp"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SKU          string          `json:"sku,omitempty"`
	Barcode      string          `json:"barcode,omitempty"`
	CurrentStock int             `json:"current_stock"`
	ImageURL     string          `json:"image_url,omitempty"`
}

// ProductDraft is the client-side, not-yet-submitted representation of a
// product. Foreign keys are kept as raw selection strings until assembly.
type ProductDraft struct {
	ItemID            string
	ItemName          string
	Model             string
	Description       string
	CategoryID        string
	SubcategoryID     string
	BrandID           string
	LowStockThreshold string
	ImageURL          string // persisted URL when editing an existing product
	Variants          []Variant
}

// SelectCategory records a category selection; switching to a different
// category clears the previously selected subcategory.
func (d *ProductDraft) SelectCategory(categoryID string) {
	if strings.TrimSpace(categoryID) != strings.TrimSpace(d.CategoryID) {
		d.SubcategoryID = ""
	}
	d.CategoryID = categoryID
}

// ProductPayload is the wire shape of a product create/update request.
type ProductPayload struct {
	ItemID            string    `json:"item_id"`
	ItemName          string    `json:"item_name"`
	CategoryID        *int      `json:"category_id"`
	SubcategoryID     *int      `json:"subcategory_id"`
	BrandID           *int      `json:"brand_id"`
	Model             string    `json:"model"`
	Description       string    `json:"description"`
	ImageURL          string    `json:"image_url,omitempty"`
	LowStockThreshold int       `json:"low_stock_threshold,omitempty"`
	Variants          []Variant `json:"variants"`
}

// Product is the server-owned record read back by the client. The client
// never mutates it directly; changes go through the submission pipeline.
type Product struct {
	ID                int       `json:"id"`
	ItemID            string    `json:"item_id"`
	ItemName          string    `json:"item_name"`
	CategoryID        int       `json:"category_id"`
	SubcategoryID     int       `json:"subcategory_id"`
	BrandID           int       `json:"brand_id"`
	CategoryName      string    `json:"category_name,omitempty"`
	SubcategoryName   string    `json:"subcategory_name,omitempty"`
	BrandName         string    `json:"brand_name,omitempty"`
	Model             string    `json:"model"`
	Description       string    `json:"description"`
	ImageURL          string    `json:"image_url"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	IsActive          bool      `json:"is_active"`
	Variants          []Variant `json:"variants"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DraftFromProduct hydrates an editable draft from a persisted product.
func DraftFromProduct(p Product) ProductDraft {
	d := ProductDraft{
		ItemID:      p.ItemID,
		ItemName:    p.ItemName,
		Model:       p.Model,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Variants:    append([]Variant(nil), p.Variants...),
	}
	if p.CategoryID > 0 {
		d.CategoryID = strconv.Itoa(p.CategoryID)
	}
	if p.SubcategoryID > 0 {
		d.SubcategoryID = strconv.Itoa(p.SubcategoryID)
	}
	if p.BrandID > 0 {
		d.BrandID = strconv.Itoa(p.BrandID)
	}
	if p.LowStockThreshold > 0 {
		d.LowStockThreshold = strconv.Itoa(p.LowStockThreshold)
	}
	return d
}
