package api

import (
	"time"

	"github.com/zoudousouk/souk-go/pkg/money"
)

// The wire format keeps the field names the service exposes (French for the
// catalog fields); Go names stay idiomatic.

// User is the authenticated account as the API returns it.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"nom"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// Product is one catalog entry.
type Product struct {
	ID          string       `json:"id"`
	Name        string       `json:"nom"`
	Description string       `json:"description,omitempty"`
	Price       money.Amount `json:"prix"`
	Category    string       `json:"categorie"`
	VendorID    string       `json:"vendeur_id,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
	Stock       int          `json:"stock,omitempty"`
}

// Balance is the wallet balance surface.
type Balance struct {
	Balance money.Amount `json:"balance"`
	Phone   string       `json:"phone"`
}

// PurchaseRequest buys a product through the wallet.
type PurchaseRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PurchaseResult confirms a product purchase.
type PurchaseResult struct {
	TransactionID string       `json:"transaction_id"`
	Amount        money.Amount `json:"amount"`
}

// TransferRequest moves money to another wallet.
type TransferRequest struct {
	ToPhone string       `json:"to_phone"`
	Amount  money.Amount `json:"amount"`
}

// TransferResult confirms a P2P transfer.
type TransferResult struct {
	TransactionID string `json:"transaction_id"`
}

// BillPaymentRequest pays a utility bill (ZIZ, STE, TAXE).
type BillPaymentRequest struct {
	ServiceType string       `json:"service_type"`
	ServiceID   string       `json:"service_id"`
	Amount      money.Amount `json:"amount"`
	Reference   string       `json:"reference"`
}

// BillPaymentResult confirms a bill payment.
type BillPaymentResult struct {
	TransactionID string       `json:"transaction_id"`
	Amount        money.Amount `json:"amount"`
}

// Transaction is one wallet history entry.
type Transaction struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Amount    money.Amount `json:"amount"`
	Details   string       `json:"details,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// Service is one payable utility.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"nom"`
	Type string `json:"type"`
}

// Credentials carries a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the session material returned on login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Name     string `json:"nom"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Province string `json:"province,omitempty"`
}

// VendorUpgradeRequest promotes an account to vendor.
type VendorUpgradeRequest struct {
	BusinessName string `json:"entreprise_nom"`
	Description  string `json:"entreprise_description"`
	BusinessType string `json:"entreprise_type"`
}

// ProfileUpdate edits the stored profile.
type ProfileUpdate struct {
	Name     string `json:"nom,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Province string `json:"province,omitempty"`
}

// ProductPayload creates or updates a catalog entry.
type ProductPayload struct {
	Name        string       `json:"nom"`
	Description string       `json:"description,omitempty"`
	Price       money.Amount `json:"prix"`
	Category    string       `json:"categorie"`
	Stock       int          `json:"stock,omitempty"`
	ImageURL    string       `json:"image_url,omitempty"`
}
