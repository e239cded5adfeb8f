package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListProducts returns up to limit catalog entries.
func (c *Client) ListProducts(ctx context.Context, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []Product
	err := c.do(ctx, request{
		operation: "list_products",
		method:    http.MethodGet,
		path:      "/products",
		query:     url.Values{"limit": []string{strconv.Itoa(limit)}},
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct fetches one catalog entry.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var out Product
	err := c.do(ctx, request{
		operation: "get_product",
		method:    http.MethodGet,
		path:      "/products/" + url.PathEscape(id),
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchProducts queries the catalog by term and optional category.
func (c *Client) SearchProducts(ctx context.Context, term, category string) ([]Product, error) {
	query := url.Values{"q": []string{term}}
	if category != "" {
		query.Set("categorie", category)
	}
	var out []Product
	err := c.do(ctx, request{
		operation: "search_products",
		method:    http.MethodGet,
		path:      "/products/search",
		query:     query,
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProductsByVendor lists a vendor's catalog.
func (c *Client) ProductsByVendor(ctx context.Context, vendorID string) ([]Product, error) {
	var out []Product
	err := c.do(ctx, request{
		operation: "products_by_vendor",
		method:    http.MethodGet,
		path:      "/products/vendeur/" + url.PathEscape(vendorID),
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct publishes a new catalog entry for the authenticated vendor.
func (c *Client) CreateProduct(ctx context.Context, payload ProductPayload) (*Product, error) {
	var out Product
	err := c.do(ctx, request{
		operation: "create_product",
		method:    http.MethodPost,
		path:      "/products",
		body:      payload,
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct edits an existing catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, id string, payload ProductPayload) (*Product, error) {
	var out Product
	err := c.do(ctx, request{
		operation: "update_product",
		method:    http.MethodPut,
		path:      "/products/" + url.PathEscape(id),
		body:      payload,
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, request{
		operation: "delete_product",
		method:    http.MethodDelete,
		path:      "/products/" + url.PathEscape(id),
	})
}
