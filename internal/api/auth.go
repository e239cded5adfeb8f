package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, request{
		operation: "login",
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      creds,
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account. The account still needs to log in.
func (c *Client) Register(ctx context.Context, payload RegisterRequest) error {
	return c.do(ctx, request{
		operation: "register",
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      payload,
	})
}

// UpgradeVendor promotes the authenticated account to vendor.
func (c *Client) UpgradeVendor(ctx context.Context, payload VendorUpgradeRequest) error {
	return c.do(ctx, request{
		operation: "upgrade_vendor",
		method:    http.MethodPost,
		path:      "/auth/upgrade-vendeur",
		body:      payload,
	})
}

// GetProfile fetches the authenticated account's profile.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var out User
	err := c.do(ctx, request{
		operation: "get_profile",
		method:    http.MethodGet,
		path:      "/users/profile",
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile edits the authenticated account's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var out User
	err := c.do(ctx, request{
		operation: "update_profile",
		method:    http.MethodPut,
		path:      "/users/profile",
		body:      update,
		out:       &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
