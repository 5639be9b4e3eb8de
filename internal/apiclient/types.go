package apiclient

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type RegisterRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Phone               string `json:"phone"`
	EnrollForPromotions bool   `json:"enroll_for_promotions"`
}

type AccessToken struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type ProfileUpdate struct {
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Phone               string `json:"phone"`
	EnrollForPromotions bool   `json:"enroll_for_promotions"`
}

type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type LoginResponse struct {
	User  User        `json:"user"`
	Token AccessToken `json:"token"`
}

type Book struct {
	ID              int64           `json:"id"`
	ISBN            string          `json:"isbn"`
	Category        string          `json:"category"`
	Author          string          `json:"author"`
	Title           string          `json:"title"`
	CoverImage      string          `json:"coverImage"`
	Edition         string          `json:"edition"`
	Publisher       string          `json:"publisher"`
	PublicationYear int             `json:"publicationYear"`
	QuantityInStock int64           `json:"quantityInStock"`
	SellingPrice    decimal.Decimal `json:"sellingPrice"`
	Rating          float64         `json:"rating"`
	Featured        bool            `json:"featured"`
	ReleaseDate     *time.Time      `json:"releaseDate"`
}

type Promotion struct {
	ID        int64     `json:"promoID"`
	PromoCode string    `json:"promoCode"`
	Discount  int       `json:"discount"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type PriceItem struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

type PriceCalculation struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	SalesTax decimal.Decimal `json:"salesTax"`
	Total    decimal.Decimal `json:"total"`
}

// GET /api/cart の1行
type CartLine struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	Quantity     int64           `json:"quantity"`
}

type CartItemRequest struct {
	BookID   int64 `json:"bookID"`
	Quantity int64 `json:"quantity"`
}

type Address struct {
	ID      int64  `json:"addressID,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

type PaymentCard struct {
	ID               int64  `json:"cardID"`
	CardNo           string `json:"cardNo"`
	Type             string `json:"type"`
	ExpirationDate   string `json:"expirationDate"`
	BillingAddressID int64  `json:"billingAddressID"`
}

type CheckoutUserData struct {
	PaymentCards      []PaymentCard `json:"paymentCards"`
	ShippingAddresses []Address     `json:"shippingAddresses"`
	BillingAddresses  []Address     `json:"billingAddresses"`
}

type PaymentInfo struct {
	CardID int64 `json:"cardID,omitempty"`

	CardNumber     string `json:"cardNumber,omitempty"`
	CardholderName string `json:"cardholderName,omitempty"`
	ExpiryDate     string `json:"expiryDate,omitempty"`
	CVV            string `json:"cvv,omitempty"`
}

type ProcessCheckoutRequest struct {
	CartItems       []CartLine      `json:"cartItems"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	BillingAddress  Address         `json:"billingAddress"`
	ShippingAddress Address         `json:"shippingAddress"`
	Email           string          `json:"email,omitempty"`
}

type CheckoutConfirmation struct {
	Message        string          `json:"message"`
	ConfirmationID string          `json:"confirmationID"`
	MaskedCardNo   string          `json:"maskedCardNo"`
	Total          decimal.Decimal `json:"total"`
	EmailSent      bool            `json:"emailSent"`
}

type AppliedPromo struct {
	ID        int64  `json:"id"`
	PromoCode string `json:"promoCode"`
}

type RecordOrderRequest struct {
	CartItems    []PriceItem     `json:"cartItems"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	AppliedPromo *AppliedPromo   `json:"appliedPromo,omitempty"`
}

type OrderItem struct {
	BookID    int64           `json:"bookID"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int64           `json:"quantity"`
}

type Order struct {
	ID         int64           `json:"orderID"`
	PromoCode  string          `json:"promoCode,omitempty"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
	Items      []OrderItem     `json:"items"`
}

type OrderList struct {
	Items []Order `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}
