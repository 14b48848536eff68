package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/flicky/go-storefront-client/internal/api"
	"github.com/flicky/go-storefront-client/internal/cart"
	"github.com/flicky/go-storefront-client/internal/checkout"
	"github.com/flicky/go-storefront-client/internal/event"
	"github.com/flicky/go-storefront-client/internal/model"
	"github.com/flicky/go-storefront-client/internal/storage"
)

func (a *app) cmdProducts(ctx context.Context) error {
	products, err := a.client.Products(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%4d  %-24s %-12s $%s  (%d in stock)\n",
			p.ID, p.Name, model.CategoryName(p.CategoryID), p.Price.StringFixed(2), p.Stock)
	}
	return nil
}

func (a *app) cmdProduct(ctx context.Context, args []string) error {
	id, err := parseID(args, "product")
	if err != nil {
		return err
	}
	p, err := a.client.ProductByID(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%s\n%s\n\ncategory: %s\nprice:    $%s\nstock:    %d\n",
		p.Name, p.Description, model.CategoryName(p.CategoryID), p.Price.StringFixed(2), p.Stock)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	address := fs.String("address", "", "shipping address")
	phone := fs.String("phone", "", "phone number")
	fs.Parse(args)

	req := api.RegisterRequest{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
		Address:         *address,
		Phone:           *phone,
	}
	if err := a.client.Register(ctx, req); err != nil {
		return err
	}
	fmt.Println("account created")

	// The original flow registers then logs the user straight in.
	return a.login(ctx, *email, *password)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)
	return a.login(ctx, *email, *password)
}

func (a *app) login(ctx context.Context, email, password string) error {
	sess, err := a.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	if err := a.sessions.Login(ctx, *sess); err != nil {
		return err
	}
	fmt.Printf("logged in as %s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func (a *app) cmdWhoami() error {
	sess := a.sessions.Current()
	if !sess.Authenticated() {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> (id %d, role %s)\n", sess.User.Name, sess.User.Email, sess.User.ID, sess.User.Role)
	return nil
}

func (a *app) cmdCart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: cart add|rm|show|clear")
	}
	switch args[0] {
	case "add":
		return a.cmdCartAdd(ctx, args[1:])
	case "rm":
		id, err := parseID(args[1:], "product")
		if err != nil {
			return err
		}
		if err := a.carts.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Printf("removed, total $%s\n", a.carts.Total().StringFixed(2))
		return nil
	case "show":
		return a.cmdCartShow()
	case "clear":
		if err := a.carts.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("cart cleared")
		return nil
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *app) cmdCartAdd(ctx context.Context, args []string) error {
	// Adding requires a session; the store itself does not enforce this.
	if !a.sessions.IsAuthenticated() {
		return errors.New("you must log in before adding to the cart")
	}

	id, err := parseID(args, "product")
	if err != nil {
		return err
	}
	p, err := a.client.ProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.carts.Add(ctx, *p); err != nil {
		if errors.Is(err, cart.ErrDuplicateItem) {
			fmt.Println("this product is already in your cart")
			return nil
		}
		return err
	}
	fmt.Printf("added %s, total $%s\n", p.Name, a.carts.Total().StringFixed(2))
	return nil
}

func (a *app) cmdCartShow() error {
	items := a.carts.Items()
	if len(items) == 0 {
		fmt.Println("your cart is empty")
		return nil
	}
	for _, p := range items {
		fmt.Printf("%4d  %-24s $%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	fmt.Printf("total: $%s\n", a.carts.Total().StringFixed(2))
	return nil
}

func (a *app) cmdCheckout(ctx context.Context) error {
	order, err := a.checkout.Checkout(ctx)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			fmt.Println("your cart is empty")
			return nil
		case errors.Is(err, checkout.ErrNotAuthenticated):
			fmt.Println("you must log in before checking out")
			return nil
		}
		return err
	}
	fmt.Printf("order #%d placed (%s), %d products\n", order.ID, order.Status, len(order.Products))
	return nil
}

func (a *app) cmdOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	open := fs.Int64("open", 0, "expand the products of one order id")
	fs.Parse(args)

	if !a.sessions.IsAuthenticated() {
		fmt.Println("not logged in")
		return nil
	}
	if err := a.history.Load(ctx); err != nil {
		return fmt.Errorf("%w (run the command again to retry)", err)
	}
	if *open != 0 {
		a.history.Toggle(*open)
	}

	list := a.history.Orders()
	if len(list) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, o := range list {
		fmt.Printf("#%-4d %s  %-9s %2d products  $%s\n",
			o.ID, o.Date.Format("2006-01-02 15:04"), o.Status, len(o.Products), o.Total().StringFixed(2))
		if a.history.Expanded(o.ID) {
			for _, p := range o.Products {
				fmt.Printf("      - %-24s $%s\n", p.Name, p.Price.StringFixed(2))
			}
		}
	}
	return nil
}

// cmdWatch follows storage changes from other storefront processes and
// reports the re-read state, the CLI analogue of the nav badge.
func (a *app) cmdWatch(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	changes, err := a.watcher.Watch(ctx)
	if err != nil {
		return err
	}

	sessionChanged, unsubSession := a.bus.Subscribe(event.TopicSessionChanged)
	defer unsubSession()
	cartChanged, unsubCart := a.bus.Subscribe(event.TopicCartChanged)
	defer unsubCart()

	go func() {
		for key := range changes {
			switch key {
			case storage.KeySession:
				a.sessions.Reload(ctx)
			case storage.KeyCart:
				a.carts.Reload(ctx)
			}
		}
	}()

	fmt.Println("watching for changes, ctrl-c to stop")
	for {
		select {
		case <-sessionChanged:
			if sess := a.sessions.Current(); sess.Authenticated() {
				fmt.Printf("session: logged in as %s\n", sess.User.Email)
			} else {
				fmt.Println("session: logged out")
			}
		case <-cartChanged:
			fmt.Printf("cart: %d items, total $%s\n", a.carts.Len(), a.carts.Total().StringFixed(2))
		case <-ctx.Done():
			return nil
		}
	}
}

func parseID(args []string, what string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing %s id", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", what, args[0])
	}
	return id, nil
}
