package apiclient

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session はログイン結果。Contextでトークンを付けたcontextを作れる
type Session struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int64   `json:"stock"`
	IsActive    bool    `json:"is_active"`
}

type CartItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int64   `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
	Stock     int64   `json:"stock"`
}

type Cart struct {
	Items []CartItem `json:"items"`
	Total float64    `json:"total"`
	Count int64      `json:"count"`
}

type CheckoutRequest struct {
	PaymentMethod   string `json:"paymentMethod"`
	ShippingAddress string `json:"shippingAddress"`
	Notes           string `json:"notes,omitempty"`
}

type CheckoutResult struct {
	OrderID int64   `json:"orderId"`
	Total   float64 `json:"total"`
	Status  string  `json:"status"`
}

type OrderItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type Order struct {
	ID              int64       `json:"id"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	PaymentMethod   string      `json:"paymentMethod"`
	ShippingAddress string      `json:"shippingAddress"`
	Notes           string      `json:"notes"`
	CreatedAt       time.Time   `json:"createdAt"`
	Items           []OrderItem `json:"items"`
}

type OrderSummary struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
	ItemsCount    int64     `json:"itemsCount"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type AdminOrderQuery struct {
	Page   int
	Limit  int
	Status string
	UserID int64
	From   time.Time
	To     time.Time
}

type StatusUpdate struct {
	ID             int64  `json:"id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus"`
}
