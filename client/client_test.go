package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pedeai/entity"
	"pedeai/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() Option { return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))) }

func reply(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_LoginKeepsTokenAndSendsIt(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana@example.com", body["email"])
			reply(w, http.StatusOK, `{"ok":true,"data":{"token":"tok-1","user":{"id":7,"name":"Ana","email":"ana@example.com"}}}`)
		case "/users/me":
			gotAuth = r.Header.Get("Authorization")
			reply(w, http.StatusOK, `{"ok":true,"data":{"id":7,"name":"Ana","email":"ana@example.com"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", quiet())
	s, err := c.Login(context.Background(), "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token)
	assert.Equal(t, "tok-1", c.Token())

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(7), u.ID)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestClient_DecodesCartView(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/cart/items", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 3, body["productId"])
		assert.EqualValues(t, 2, body["quantity"])
		assert.NotContains(t, body, "price", "prices come from the server catalog")

		reply(w, http.StatusOK, `{"ok":true,"data":{
			"restaurantId":1,
			"items":[{"productId":3,"restaurantId":1,"name":"Margherita","price":"25.00","quantity":2}],
			"total":"50.00","itemCount":2}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("t"), quiet())
	cart, err := c.AddItem(context.Background(), entity.CartLine{ProductID: 3, Quantity: 2, Price: decimal.NewFromInt(99)})
	require.NoError(t, err)
	require.NotNil(t, cart.RestaurantID)
	assert.Equal(t, uint(1), *cart.RestaurantID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "50.00", cart.Total().StringFixed(2))
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    apperr.Kind
		message string
	}{
		{"backend message kept verbatim", http.StatusConflict,
			`{"ok":false,"error":"BACKEND_REJECTION","message":"cart total changed, review your cart before ordering"}`,
			apperr.KindRejected, "cart total changed, review your cart before ordering"},
		{"cross restaurant", http.StatusConflict,
			`{"ok":false,"error":"CROSS_RESTAURANT_CONFLICT","message":"cart holds items from another restaurant"}`,
			apperr.KindCrossRestaurant, "cart holds items from another restaurant"},
		{"unknown kind falls back to status", http.StatusNotFound,
			`{"ok":false,"error":"WHATEVER","message":"order not found"}`,
			apperr.KindNotFound, "order not found"},
		{"plain text body", http.StatusBadGateway, `bad gateway`,
			apperr.KindTransient, genericFailure},
		{"too many requests", http.StatusTooManyRequests, `{"ok":false,"message":"slow down"}`,
			apperr.KindTransient, "slow down"},
		{"unauthorized", http.StatusUnauthorized, `{}`,
			apperr.KindUnauthorized, genericFailure},
		{"other 4xx", http.StatusTeapot, `{}`,
			apperr.KindRejected, genericFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reply(w, tt.status, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL, quiet()).Cart(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.MessageOf(err, ""))
		})
	}
}

func TestClient_NetworkFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, quiet()).Addresses(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrTransient)
}

func TestClient_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}), quiet())
	_, err := c.Payments(context.Background())
	assert.ErrorIs(t, err, apperr.ErrTransient)
}

func TestClient_CallerCancelIsNotTransient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := New(srv.URL, quiet()).MyOrders(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, apperr.ErrTransient)
}

func TestClient_QueryParams(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		reply(w, http.StatusOK, `{"ok":true,"data":[]}`)
	}))
	defer srv.Close()

	c := New(srv.URL, quiet())
	ctx := context.Background()
	_, err := c.MyOrders(ctx, entity.OrderPending)
	require.NoError(t, err)
	_, err = c.Restaurants(ctx, "pizza boa")
	require.NoError(t, err)
	_, err = c.RestaurantProducts(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"/orders/my?status=pending", "/restaurants?q=pizza+boa", "/restaurants/4/products"}, paths)
}
