package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Thin CRUD wrappers for the RBAC admin entities. These are glue over the
// transport; list filtering and pagination are passed through untouched.

// User is the backend user record.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Active    bool   `json:"is_active"`
	Staff     bool   `json:"is_staff"`
	Superuser bool   `json:"is_superuser"`
}

// Role is a named permission grouping.
type Role struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	DataScope string `json:"data_scope"`
}

// Organization is a node of the organization tree.
type Organization struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent *int64 `json:"parent"`
}

// MenuRecord is the flat menu row used by the menu administration pages,
// as opposed to the nested tree the compiler consumes.
type MenuRecord struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	Component string `json:"component"`
	Icon      string `json:"icon"`
	Order     int    `json:"order"`
	Parent    *int64 `json:"parent"`
	Hidden    bool   `json:"is_hidden"`
}

func (c *Client) ListUsers(ctx context.Context, params url.Values) ([]User, error) {
	return list[User](c, ctx, "/api/rbac/users/", params)
}

func (c *Client) GetUser(ctx context.Context, id int64) (User, error) {
	return get[User](c, ctx, "/api/rbac/users/", id)
}

func (c *Client) CreateUser(ctx context.Context, u User) (User, error) {
	return create[User](c, ctx, "/api/rbac/users/", u)
}

func (c *Client) UpdateUser(ctx context.Context, id int64, u User) (User, error) {
	return update[User](c, ctx, "/api/rbac/users/", id, u)
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return remove(c, ctx, "/api/rbac/users/", id)
}

func (c *Client) ListRoles(ctx context.Context, params url.Values) ([]Role, error) {
	return list[Role](c, ctx, "/api/rbac/roles/", params)
}

func (c *Client) GetRole(ctx context.Context, id int64) (Role, error) {
	return get[Role](c, ctx, "/api/rbac/roles/", id)
}

func (c *Client) CreateRole(ctx context.Context, r Role) (Role, error) {
	return create[Role](c, ctx, "/api/rbac/roles/", r)
}

func (c *Client) UpdateRole(ctx context.Context, id int64, r Role) (Role, error) {
	return update[Role](c, ctx, "/api/rbac/roles/", id, r)
}

func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return remove(c, ctx, "/api/rbac/roles/", id)
}

func (c *Client) ListOrganizations(ctx context.Context, params url.Values) ([]Organization, error) {
	return list[Organization](c, ctx, "/api/rbac/organizations/", params)
}

func (c *Client) ListMenus(ctx context.Context, params url.Values) ([]MenuRecord, error) {
	return list[MenuRecord](c, ctx, "/api/rbac/menus/", params)
}

func (c *Client) CreateMenu(ctx context.Context, m MenuRecord) (MenuRecord, error) {
	return create[MenuRecord](c, ctx, "/api/rbac/menus/", m)
}

func (c *Client) UpdateMenu(ctx context.Context, id int64, m MenuRecord) (MenuRecord, error) {
	return update[MenuRecord](c, ctx, "/api/rbac/menus/", id, m)
}

func (c *Client) DeleteMenu(ctx context.Context, id int64) error {
	return remove(c, ctx, "/api/rbac/menus/", id)
}

func list[T any](c *Client, ctx context.Context, base string, params url.Values) ([]T, error) {
	payload, err := c.transport.Get(ctx, base, params)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode list %s: %w", base, err)
	}
	return out, nil
}

func get[T any](c *Client, ctx context.Context, base string, id int64) (T, error) {
	var out T
	payload, err := c.transport.Get(ctx, fmt.Sprintf("%s%d/", base, id), nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode %s%d: %w", base, id, err)
	}
	return out, nil
}

func create[T any](c *Client, ctx context.Context, base string, body T) (T, error) {
	var out T
	payload, err := c.transport.Post(ctx, base, body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode create %s: %w", base, err)
	}
	return out, nil
}

func update[T any](c *Client, ctx context.Context, base string, id int64, body T) (T, error) {
	var out T
	payload, err := c.transport.Put(ctx, fmt.Sprintf("%s%d/", base, id), body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode update %s%d: %w", base, id, err)
	}
	return out, nil
}

func remove(c *Client, ctx context.Context, base string, id int64) error {
	_, err := c.transport.Delete(ctx, fmt.Sprintf("%s%d/", base, id))
	return err
}
