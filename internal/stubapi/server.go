// Package stubapi is a development stand-in for the remote storefront API.
// It implements the endpoints the client consumes (register, login,
// products, orders) with in-memory state, bcrypt-hashed passwords, and
// HS256 bearer tokens. Used by cmd/stubapi and the integration tests.
package stubapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/go-storefront-client/internal/config"
	"github.com/flicky/go-storefront-client/internal/model"
)

type account struct {
	user         model.User
	passwordHash []byte
}

type Server struct {
	jwtSecret []byte
	jwtExpiry time.Duration
	log       *slog.Logger

	mu          sync.Mutex
	accounts    map[string]*account
	orders      map[int64][]model.Order
	products    []model.Product
	nextUserID  int64
	nextOrderID int64
}

func NewServer(cfg config.StubAPIConfig, log *slog.Logger) *Server {
	return &Server{
		jwtSecret:   []byte(cfg.JWTSecret),
		jwtExpiry:   cfg.JWTExpiry,
		log:         log,
		accounts:    make(map[string]*account),
		orders:      make(map[int64][]model.Order),
		products:    seedProducts(),
		nextUserID:  1,
		nextOrderID: 1,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/products", s.listProducts)
	router.GET("/products/:id", s.getProduct)
	router.POST("/users/register", s.register)
	router.POST("/users/login", s.login)

	auth := router.Group("", s.requireAuth())
	auth.POST("/orders", s.createOrder)
	auth.GET("/users/orders", s.listOrders)

	return router
}

func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.products)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "email already registered"})
		return
	}

	user := model.User{
		ID:      s.nextUserID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Role:    "customer",
		Orders:  []model.Order{},
	}
	s.nextUserID++
	s.accounts[req.Email] = &account{user: user, passwordHash: hashed}

	c.JSON(http.StatusCreated, gin.H{"message": "user registered"})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		return
	}

	token, err := s.generateToken(acct.user)
	if err != nil {
		s.log.Error("sign token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, model.UserSession{Token: token, User: acct.user})
}

type createOrderRequest struct {
	Products []int64 `json:"products" binding:"required,min=1"`
}

func (s *Server) createOrder(c *gin.Context) {
	userID := currentUserID(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int64]model.Product, len(s.products))
	for _, p := range s.products {
		byID[p.ID] = p
	}

	items := make([]model.Product, 0, len(req.Products))
	for _, id := range req.Products {
		p, ok := byID[id]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": "product not found"})
			return
		}
		items = append(items, p)
	}

	order := model.Order{
		ID:       s.nextOrderID,
		Date:     time.Now().UTC(),
		Status:   model.OrderStatusPending,
		Products: items,
	}
	s.nextOrderID++
	s.orders[userID] = append(s.orders[userID], order)

	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	userID := currentUserID(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[userID]
	if orders == nil {
		orders = []model.Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) generateToken(user model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"exp": time.Now().Add(s.jwtExpiry).Unix(),
		"iat": time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProducts() []model.Product {
	return []model.Product{
		{ID: 1, Name: "Nimbus X1", Description: "6.4-inch OLED smartphone", Price: dec("699.00"), Stock: 25, CategoryID: 1, Image: "https://img.example.com/nimbus-x1.jpg"},
		{ID: 2, Name: "Aero 14", Description: "14-inch ultralight laptop", Price: dec("1199.00"), Stock: 12, CategoryID: 2, Image: "https://img.example.com/aero-14.jpg"},
		{ID: 3, Name: "Slate 11", Description: "11-inch tablet with stylus", Price: dec("449.50"), Stock: 30, CategoryID: 3, Image: "https://img.example.com/slate-11.jpg"},
		{ID: 4, Name: "Pulse ANC", Description: "Noise-cancelling over-ear headphones", Price: dec("199.99"), Stock: 40, CategoryID: 4, Image: "https://img.example.com/pulse-anc.jpg"},
		{ID: 5, Name: "Optik R6", Description: "24MP mirrorless camera", Price: dec("899.00"), Stock: 8, CategoryID: 5, Image: "https://img.example.com/optik-r6.jpg"},
		{ID: 6, Name: "VaultDrive 2TB", Description: "Portable 2TB SSD", Price: dec("159.00"), Stock: 60, CategoryID: 8, Image: "https://img.example.com/vaultdrive.jpg"},
	}
}
