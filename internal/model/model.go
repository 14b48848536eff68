package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  int             `json:"categoryId"`
	Image       string          `json:"image"`
}

type User struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
	Role    string  `json:"role"`
	Orders  []Order `json:"orders"`
}

// UserSession is the authenticated identity held client-side. A session
// counts as authenticated iff Token is non-empty.
type UserSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (s *UserSession) Authenticated() bool {
	return s != nil && s.Token != ""
}

type OrderStatus string

const (
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusRejected OrderStatus = "rejected"
)

type Order struct {
	ID       int64       `json:"id"`
	Date     time.Time   `json:"date"`
	Status   OrderStatus `json:"status"`
	Products []Product   `json:"products"`
}

// Total sums the order's product prices. A product with no price counts
// as zero.
func (o Order) Total() decimal.Decimal {
	var total decimal.Decimal
	for _, p := range o.Products {
		total = total.Add(p.Price)
	}
	return total
}
