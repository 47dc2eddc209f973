package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Context はこのセッションのトークンを付けたcontextを返す
func (s Session) Context(ctx context.Context) context.Context {
	return WithToken(ctx, s.Token)
}

func (c *Client) Register(ctx context.Context, name string, email string, password string) (Session, error) {
	var out Session
	_, err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	return out, err
}

// Login はトークンを返すだけでクライアントの状態は変えない
func (c *Client) Login(ctx context.Context, email string, password string) (Session, error) {
	var out Session
	_, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email": email, "password": password,
	}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	_, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out)
	return out, err
}

func (c *Client) ListProducts(ctx context.Context, category string, search string) ([]Product, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	var out []Product
	_, err := c.do(ctx, http.MethodGet, withQuery("/api/products", q), nil, &out)
	return out, err
}

func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int64) (Cart, error) {
	var out Cart
	_, err := c.do(ctx, http.MethodPost, "/api/cart", map[string]int64{
		"productId": productID, "quantity": quantity,
	}, &out)
	return out, err
}

func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	var out Cart
	_, err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out)
	return out, err
}

func (c *Client) Checkout(ctx context.Context, in CheckoutRequest) (CheckoutResult, error) {
	var out CheckoutResult
	_, err := c.do(ctx, http.MethodPost, "/api/orders/checkout", in, &out)
	return out, err
}

func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	_, err := c.do(ctx, http.MethodGet, "/api/orders", nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id int64) (Order, error) {
	var out Order
	_, err := c.do(ctx, http.MethodGet, idPath("/api/orders", id), nil, &out)
	return out, err
}

func (c *Client) AdminListOrders(ctx context.Context, q AdminOrderQuery) ([]OrderSummary, Pagination, error) {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.UserID > 0 {
		v.Set("userId", strconv.FormatInt(q.UserID, 10))
	}
	if !q.From.IsZero() {
		v.Set("from", q.From.Format(time.RFC3339))
	}
	if !q.To.IsZero() {
		v.Set("to", q.To.Format(time.RFC3339))
	}

	var out []OrderSummary
	env, err := c.do(ctx, http.MethodGet, withQuery("/api/admin/orders", v), nil, &out)
	if err != nil {
		return nil, Pagination{}, err
	}
	var p Pagination
	if env.Pagination != nil {
		p = *env.Pagination
	}
	return out, p, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (StatusUpdate, error) {
	var out StatusUpdate
	_, err := c.do(ctx, http.MethodPut, idPath("/api/admin/orders", id)+"/status", map[string]string{"status": status}, &out)
	return out, err
}
