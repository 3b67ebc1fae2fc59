package models

import (
	"strings"
	"time"
)

// Category is one tag from the closed storefront category set
type Category string

const (
	CategoryAll      Category = "All"
	CategoryMen      Category = "Men"
	CategoryWomen    Category = "Women"
	CategoryGadgets  Category = "Gadgets"
	CategoryClothing Category = "Clothing"
	CategoryJewelry  Category = "Jewelry"
	CategoryGifts    Category = "Gifts"
)

// ShopCategories are the categories a product can be tagged with, in menu order.
var ShopCategories = []Category{
	CategoryMen,
	CategoryWomen,
	CategoryGadgets,
	CategoryClothing,
	CategoryJewelry,
	CategoryGifts,
}

// Slug returns the URL path segment for the category ("" for All).
func (c Category) Slug() string {
	if c == CategoryAll {
		return ""
	}
	return strings.ToLower(string(c))
}

// Valid reports whether c belongs to the enumeration, All included.
func (c Category) Valid() bool {
	if c == CategoryAll {
		return true
	}
	for _, sc := range ShopCategories {
		if c == sc {
			return true
		}
	}
	return false
}

// ParseCategory resolves a category name or slug, case-insensitively.
func ParseCategory(s string) (Category, bool) {
	if strings.EqualFold(s, string(CategoryAll)) {
		return CategoryAll, true
	}
	for _, c := range ShopCategories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Product represents a catalog product
type Product struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Price       float64    `json:"price" yaml:"price"`
	Rating      float64    `json:"rating" yaml:"rating"`
	Seller      string     `json:"seller" yaml:"seller"`
	Image       string     `json:"image" yaml:"image"`
	Images      []string   `json:"images,omitempty" yaml:"images"`
	Categories  []Category `json:"category" yaml:"category"`
	Description string     `json:"description" yaml:"description"`
	InStock     bool       `json:"inStock" yaml:"inStock"`
	Reviews     int        `json:"reviews" yaml:"reviews"`
}

// HasCategory reports whether the product is tagged with c
func (p Product) HasCategory(c Category) bool {
	for _, pc := range p.Categories {
		if pc == c {
			return true
		}
	}
	return false
}

// CartItem is a product paired with a purchase quantity
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal returns price times quantity
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// User represents a storefront account
type User struct {
	ID           string `json:"id" yaml:"id"`
	Username     string `json:"username" yaml:"username"`
	Email        string `json:"email" yaml:"email"`
	ProfileImage string `json:"profileImage" yaml:"profileImage"`
	IsSeller     bool   `json:"isSeller" yaml:"isSeller"`
	IsAdmin      bool   `json:"isAdmin" yaml:"isAdmin"`
}

// Role returns the label shown in the admin user directory
func (u User) Role() string {
	switch {
	case u.IsAdmin:
		return "Admin"
	case u.IsSeller:
		return "Seller"
	default:
		return "Customer"
	}
}

// Message is a single entry of a buyer/seller conversation
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	FromUser  bool      `json:"isFromUser"`
}

// SellerApplication is a request to become a seller
type SellerApplication struct {
	ID           string `json:"id" yaml:"id"`
	Username     string `json:"username" yaml:"username"`
	Email        string `json:"email" yaml:"email"`
	BusinessName string `json:"businessName,omitempty" yaml:"businessName"`
	Description  string `json:"description,omitempty" yaml:"description"`
	Experience   string `json:"experience,omitempty" yaml:"experience"`
	WhatsApp     string `json:"whatsapp,omitempty" yaml:"whatsapp"`
	Website      string `json:"website,omitempty" yaml:"website"`
	AppliedDate  string `json:"appliedDate" yaml:"appliedDate"`
}

// ProductDraft is the payload of the product upload form
type ProductDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	WhatsApp    string `json:"whatsapp"`
	Email       string `json:"email"`
	PaymentInfo string `json:"paymentInfo"`
	Image       string `json:"image"`
	AgreeToFees bool   `json:"agreeToFees"`
}

// Notice is the confirmation feedback returned by form submissions
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CartSummary represents the cart page
type CartSummary struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Lines     int        `json:"lines"`
	Subtotal  float64    `json:"subtotal"`
	Shipping  float64    `json:"shipping"`
	Total     float64    `json:"total"`
}

// SessionState is the navbar view of a session
type SessionState struct {
	User           *User    `json:"user"`
	Category       Category `json:"currentCategory"`
	SearchQuery    string   `json:"searchQuery"`
	CartItemCount  int      `json:"cartItemCount"`
	FavoritesCount int      `json:"favoritesCount"`
}

// AddToCartRequest represents a request to add a product to the cart
type AddToCartRequest struct {
	ProductID string `json:"productId"`
}

// UpdateQuantityRequest represents a cart quantity change. A nil Quantity
// means the field was missing from the body.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// LoginRequest represents the mock login/sign-up form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	SignUp   bool   `json:"signup"`
}

// ProfileUpdateRequest represents the profile edit form
type ProfileUpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SendMessageRequest represents a message to a seller
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SessionUpdateRequest represents navbar input changes
type SessionUpdateRequest struct {
	Category    *string `json:"category"`
	SearchQuery *string `json:"searchQuery"`
}
