package api

import (
	"context"
	"fmt"

	"github.com/rkohli/stockpilot/internal/errs"
	"github.com/rkohli/stockpilot/internal/model"
)

// LoginResult carries the issued token and the authenticated identity.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// RegisterRequest creates an account; admin-initiated only.
type RegisterRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// Login authenticates with credentials. The token is not persisted here;
// the session store owns persistence.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.post(ctx, "/login", body, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Profile fetches the identity behind the current token.
func (c *Client) Profile(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.get(ctx, "/profile", &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.User, error) {
	var u model.User
	if err := c.post(ctx, "/register", req, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Categories fetches the full category list.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.get(ctx, "/categories", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory creates a category and returns it with its assigned id.
func (c *Client) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	var out model.Category
	if err := c.post(ctx, "/categories", map[string]string{"name": name}, &out); err != nil {
		return model.Category{}, err
	}
	return out, nil
}

// Brands fetches the full brand list.
func (c *Client) Brands(ctx context.Context) ([]model.Brand, error) {
	var out []model.Brand
	if err := c.get(ctx, "/brands", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBrand creates a brand and returns it with its assigned id.
func (c *Client) CreateBrand(ctx context.Context, name string) (model.Brand, error) {
	var out model.Brand
	if err := c.post(ctx, "/brands", map[string]string{"name": name}, &out); err != nil {
		return model.Brand{}, err
	}
	return out, nil
}

// Subcategories fetches the subcategory list scoped to one category.
func (c *Client) Subcategories(ctx context.Context, categoryID int) ([]model.Subcategory, error) {
	var out []model.Subcategory
	path := fmt.Sprintf("/subcategories?category_id=%d", categoryID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSubcategory creates a subcategory under categoryID. The backend
// contract wraps the created entity as {"message", "data"}; a response
// without data.id is a contract defect, not something to paper over.
func (c *Client) CreateSubcategory(ctx context.Context, name string, categoryID int) (model.Subcategory, error) {
	body := map[string]any{"name": name, "category_id": categoryID}
	var out struct {
		Message string            `json:"message"`
		Data    model.Subcategory `json:"data"`
	}
	if err := c.post(ctx, "/subcategories", body, &out); err != nil {
		return model.Subcategory{}, err
	}
	if out.Data.ID == 0 {
		return model.Subcategory{}, fmt.Errorf("%w: create subcategory returned no id", errs.ErrServer)
	}
	return out.Data, nil
}

// Products fetches the full product list.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := c.get(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct submits one product with its embedded variants in a single call.
func (c *Client) CreateProduct(ctx context.Context, p model.ProductPayload) (model.Product, error) {
	var out model.Product
	if err := c.post(ctx, "/products", p, &out); err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// UpdateProduct replaces the product identified by id.
func (c *Client) UpdateProduct(ctx context.Context, id int, p model.ProductPayload) (model.Product, error) {
	var out model.Product
	if err := c.put(ctx, fmt.Sprintf("/products/%d", id), p, &out); err != nil {
		return model.Product{}, err
	}
	return out, nil
}

// DeleteProduct removes the product identified by id.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/products/%d", id))
}

// Users lists all accounts.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.get(ctx, "/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser replaces mutable fields of one account.
func (c *Client) UpdateUser(ctx context.Context, id int, u model.User) (model.User, error) {
	var out model.User
	if err := c.put(ctx, fmt.Sprintf("/users/%d", id), u, &out); err != nil {
		return model.User{}, err
	}
	return out, nil
}

// DeleteUser removes one account.
func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/users/%d", id))
}
