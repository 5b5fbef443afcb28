package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"pedeai/entity"

	"github.com/shopspring/decimal"
)

type Session struct {
	Token string      `json:"token"`
	User  entity.User `json:"user"`
}

type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*Session, error) {
	var s Session
	if err := c.do(ctx, "POST", "/auth/register", in, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, "POST", "/auth/login", body, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var u entity.User
	if err := c.do(ctx, "GET", "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// cart endpoints all answer with the full cart

func (c *Client) cart(ctx context.Context, method, path string, body any) (*entity.Cart, error) {
	var v entity.CartView
	if err := c.do(ctx, method, path, body, &v); err != nil {
		return nil, err
	}
	return v.Cart(), nil
}

func (c *Client) Cart(ctx context.Context) (*entity.Cart, error) {
	return c.cart(ctx, "GET", "/cart", nil)
}

// AddItem sends only the product and quantity; the server fills in name,
// price and restaurant from its catalog.
func (c *Client) AddItem(ctx context.Context, line entity.CartLine) (*entity.Cart, error) {
	body := map[string]any{"productId": line.ProductID, "quantity": line.Quantity}
	return c.cart(ctx, "POST", "/cart/items", body)
}

func (c *Client) UpdateQuantity(ctx context.Context, productID uint, quantity int) (*entity.Cart, error) {
	return c.cart(ctx, "PUT", fmt.Sprintf("/cart/items/%d", productID), map[string]int{"quantity": quantity})
}

func (c *Client) RemoveItem(ctx context.Context, productID uint) (*entity.Cart, error) {
	return c.cart(ctx, "DELETE", fmt.Sprintf("/cart/items/%d", productID), nil)
}

func (c *Client) ClearCart(ctx context.Context) (*entity.Cart, error) {
	return c.cart(ctx, "DELETE", "/cart", nil)
}

func (c *Client) Addresses(ctx context.Context) ([]entity.Address, error) {
	var out []entity.Address
	if err := c.do(ctx, "GET", "/addresses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Payments(ctx context.Context) ([]entity.PaymentMethod, error) {
	var out []entity.PaymentMethod
	if err := c.do(ctx, "GET", "/payments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderLine is a copied cart line inside an order payload.
type OrderLine struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderPayload is what POST /orders receives. Address and PaymentLabel are
// the human-readable forms shown to the user at submission time.
type OrderPayload struct {
	AddressID    uint            `json:"addressId"`
	PaymentID    uint            `json:"paymentId"`
	Items        []OrderLine     `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Address      string          `json:"address"`
	PaymentLabel string          `json:"paymentLabel"`
}

func (c *Client) CreateOrder(ctx context.Context, p OrderPayload) (*entity.Order, error) {
	var o entity.Order
	if err := c.do(ctx, "POST", "/orders", p, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// MyOrders lists the caller's orders, newest first. An empty status lists
// all of them.
func (c *Client) MyOrders(ctx context.Context, status entity.OrderStatus) ([]entity.Order, error) {
	path := "/orders/my"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []entity.Order
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := c.do(ctx, "POST", "/orders/"+strconv.FormatUint(uint64(orderID), 10)+"/cancel", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Restaurants(ctx context.Context, query string) ([]entity.Restaurant, error) {
	path := "/restaurants"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []entity.Restaurant
	if err := c.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RestaurantProducts(ctx context.Context, restaurantID uint) ([]entity.Product, error) {
	var out []entity.Product
	if err := c.do(ctx, "GET", fmt.Sprintf("/restaurants/%d/products", restaurantID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
