package stubapi

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/go-storefront-client/internal/api"
	"github.com/flicky/go-storefront-client/internal/config"
	"github.com/flicky/go-storefront-client/internal/model"
)

func newTestClient(t *testing.T) *api.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := NewServer(config.StubAPIConfig{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	}, log)
	srv := httptest.NewServer(server.Router())
	t.Cleanup(srv.Close)
	return api.New(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, log)
}

func register(t *testing.T, client *api.Client, email string) {
	t.Helper()
	require.NoError(t, client.Register(context.Background(), api.RegisterRequest{
		Name:     "Ana Torres",
		Email:    email,
		Password: "password123",
		Address:  "Calle 12 #34",
		Phone:    "+573112708453",
	}))
}

func TestStub_RegisterLoginFlow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	register(t, client, "ana@example.com")

	sess, err := client.Login(ctx, api.LoginRequest{Email: "ana@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.Equal(t, "customer", sess.User.Role)
}

func TestStub_DuplicateRegistrationRejected(t *testing.T) {
	client := newTestClient(t)

	register(t, client, "ana@example.com")
	err := client.Register(context.Background(), api.RegisterRequest{
		Name: "Ana Torres", Email: "ana@example.com", Password: "password123",
	})
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "email already registered", apiErr.Message)
}

func TestStub_WrongPasswordRejected(t *testing.T) {
	client := newTestClient(t)

	register(t, client, "ana@example.com")
	_, err := client.Login(context.Background(), api.LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestStub_ProductsAndSingleLookup(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	products, err := client.Products(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)

	p, err := client.ProductByID(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Equal(t, products[0].Name, p.Name)

	_, err = client.ProductByID(ctx, 9999)
	assert.ErrorIs(t, err, api.ErrProductNotFound)
}

func TestStub_OrderLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	register(t, client, "ana@example.com")
	sess, err := client.Login(ctx, api.LoginRequest{Email: "ana@example.com", Password: "password123"})
	require.NoError(t, err)

	order, err := client.CreateOrder(ctx, sess.Token, []int64{1, 4})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Len(t, order.Products, 2)

	orders, err := client.Orders(ctx, sess.Token)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.False(t, orders[0].Total().IsZero())
}

func TestStub_OrdersRequireAuth(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.CreateOrder(ctx, "", []int64{1})
	require.Error(t, err)

	_, err = client.CreateOrder(ctx, "garbage-token", []int64{1})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
}

func TestStub_UnknownProductRejected(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	register(t, client, "ana@example.com")
	sess, err := client.Login(ctx, api.LoginRequest{Email: "ana@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = client.CreateOrder(ctx, sess.Token, []int64{9999})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "product not found", apiErr.Message)
}
