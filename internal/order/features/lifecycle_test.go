package features

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	catalogapp "github.com/dmehra2102/foodhub/internal/catalog/application"
	catalogdomain "github.com/dmehra2102/foodhub/internal/catalog/domain"
	catalogmem "github.com/dmehra2102/foodhub/internal/catalog/infrastructure/memory"
	identity "github.com/dmehra2102/foodhub/internal/identity/domain"
	"github.com/dmehra2102/foodhub/internal/identity/token"
	orderapp "github.com/dmehra2102/foodhub/internal/order/application"
	"github.com/dmehra2102/foodhub/internal/order/domain"
	"github.com/dmehra2102/foodhub/pkg/apperr"
)

const secret = "feature-secret"

var errorKinds = map[string]error{
	"validation":    apperr.ErrValidation,
	"not found":     apperr.ErrNotFound,
	"forbidden":     apperr.ErrForbidden,
	"unavailable":   apperr.ErrUnavailable,
	"invalid state": apperr.ErrInvalidState,
}

type lifecycleContext struct {
	now    time.Time
	menu   *catalogapp.Service
	ledger *orderapp.Ledger
	actors map[string]identity.Actor
	order  domain.Order
	err    error
	token  string
}

func (c *lifecycleContext) reset() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return c.now }
	c.menu = catalogapp.NewService(log, catalogmem.NewSeededMenuStore(c.now))
	c.ledger = orderapp.NewLedger(log, c.menu, orderapp.WithClock(clock))
	c.actors = map[string]identity.Actor{}
	c.order = domain.Order{}
	c.err = nil
	c.token = ""
}

func (c *lifecycleContext) theHouseMenu() error {
	items, err := c.menu.List(context.Background(), catalogapp.Filter{})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("menu is empty")
	}
	return nil
}

func (c *lifecycleContext) aCustomer(name string) error {
	c.actors[name] = identity.Actor{ID: "u_" + name, Name: name, Email: name + "@example.com", Role: identity.RoleUser}
	return nil
}

func (c *lifecycleContext) anAdmin(name string) error {
	c.actors[name] = identity.Actor{ID: "u_" + name, Name: name, Email: name + "@example.com", Role: identity.RoleAdmin}
	return nil
}

func (c *lifecycleContext) actor(name string) (identity.Actor, error) {
	a, ok := c.actors[name]
	if !ok {
		return identity.Actor{}, fmt.Errorf("unknown actor %q", name)
	}
	return a, nil
}

func (c *lifecycleContext) place(name string, items ...orderapp.ItemRequest) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	o, err := c.ledger.Place(context.Background(), orderapp.PlaceInput{UserID: a.ID, Items: items})
	c.err = err
	if err == nil {
		c.order = o
	}
	return nil
}

func (c *lifecycleContext) orders(name string, qty int, item string) error {
	return c.place(name, orderapp.ItemRequest{CatalogItemID: item, Quantity: qty})
}

func (c *lifecycleContext) ordersTwo(name string, q1 int, i1 string, q2 int, i2 string) error {
	return c.place(name, orderapp.ItemRequest{CatalogItemID: i1, Quantity: q1}, orderapp.ItemRequest{CatalogItemID: i2, Quantity: q2})
}

func (c *lifecycleContext) placesAnEmptyOrder(name string) error {
	return c.place(name)
}

func (c *lifecycleContext) menuItemIsUnavailable(id string) error {
	off := false
	_, err := c.menu.Update(context.Background(), id, catalogdomain.Patch{Available: &off})
	return err
}

func (c *lifecycleContext) menuItemIsRepriced(id, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	_, err = c.menu.Update(context.Background(), id, catalogdomain.Patch{Price: &p})
	return err
}

func (c *lifecycleContext) viewsTheOrder(name string) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	o, err := c.ledger.Get(context.Background(), c.order.ID, a)
	c.err = err
	if err == nil {
		c.order = o
	}
	return nil
}

func (c *lifecycleContext) setsTheOrderStatus(name, status string) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	c.now = c.now.Add(time.Minute)
	o, err := c.ledger.UpdateStatus(context.Background(), c.order.ID, status, a)
	c.err = err
	if err == nil {
		c.order = o
	}
	return nil
}

func (c *lifecycleContext) cancelsTheOrder(name string) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	c.now = c.now.Add(time.Minute)
	o, err := c.ledger.Cancel(context.Background(), c.order.ID, a)
	c.err = err
	if err == nil {
		c.order = o
	}
	return nil
}

func (c *lifecycleContext) theChargesAre(subtotal, tax, total string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	ch := c.order.Charges
	got := [3]string{ch.Subtotal.StringFixed(2), ch.Tax.StringFixed(2), ch.Total.StringFixed(2)}
	if got != [3]string{subtotal, tax, total} {
		return fmt.Errorf("expected %s/%s/%s, got %v", subtotal, tax, total, got)
	}
	return nil
}

func (c *lifecycleContext) theOrderStatusIs(status string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if string(c.order.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, c.order.Status)
	}
	return nil
}

func (c *lifecycleContext) theTimelineHasEntries(n int) error {
	if len(c.order.Timeline) != n {
		return fmt.Errorf("expected %d timeline entries, got %d", n, len(c.order.Timeline))
	}
	if c.order.Timeline[0].Status != domain.StatusPlaced || !c.order.Timeline[0].At.Equal(c.order.CreatedAt) {
		return fmt.Errorf("timeline does not open with the placement: %+v", c.order.Timeline[0])
	}
	for i := 1; i < len(c.order.Timeline); i++ {
		if c.order.Timeline[i].At.Before(c.order.Timeline[i-1].At) {
			return fmt.Errorf("timeline out of order at %d", i)
		}
	}
	return nil
}

func (c *lifecycleContext) theLastTimelineEntryIsBy(name string) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	last := c.order.Timeline[len(c.order.Timeline)-1]
	if last.ActorID != a.ID {
		return fmt.Errorf("expected last entry by %s, got %s", a.ID, last.ActorID)
	}
	return nil
}

func (c *lifecycleContext) lineHasQuantity(line, qty int) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if got := c.order.LineItems[line-1].Quantity; got != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, got)
	}
	return nil
}

func (c *lifecycleContext) lineHasUnitPrice(line int, price string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if got := c.order.LineItems[line-1].UnitPrice.StringFixed(2); got != price {
		return fmt.Errorf("expected unit price %s, got %s", price, got)
	}
	return nil
}

func (c *lifecycleContext) theRequestFailsWith(kind string) error {
	want, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("expected %s error, got %v", kind, c.err)
	}
	return nil
}

func (c *lifecycleContext) seesOrders(name string, n int) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	orders, err := c.ledger.List(context.Background(), a, "")
	if err != nil {
		return err
	}
	if len(orders) != n {
		return fmt.Errorf("%s sees %d orders, expected %d", name, len(orders), n)
	}
	return nil
}

func (c *lifecycleContext) signer(key string) *token.Signer {
	return token.NewSigner(key, time.Minute).WithClock(func() time.Time { return c.now })
}

func (c *lifecycleContext) aTokenValidFor(name string, seconds int) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	signer := token.NewSigner(secret, time.Duration(seconds)*time.Second).WithClock(func() time.Time { return c.now })
	c.token, err = signer.Issue(token.Identity{Subject: a.ID, Email: a.Email, Role: a.Role})
	return err
}

func (c *lifecycleContext) theTokenVerifiesAs(name string) error {
	a, err := c.actor(name)
	if err != nil {
		return err
	}
	claims, err := c.signer(secret).Verify(c.token)
	if err != nil {
		return err
	}
	if claims.Subject != a.ID || claims.Email != a.Email || claims.Role != a.Role {
		return fmt.Errorf("unexpected claims %+v", claims)
	}
	return nil
}

func (c *lifecycleContext) secondsPass(n int) error {
	c.now = c.now.Add(time.Duration(n) * time.Second)
	return nil
}

func (c *lifecycleContext) theTokenIsRejected() error {
	return c.theTokenIsRejectedWithSecret(secret)
}

func (c *lifecycleContext) theTokenIsRejectedWithSecret(key string) error {
	if _, err := c.signer(key).Verify(c.token); !errors.Is(err, token.ErrInvalidToken) {
		return fmt.Errorf("expected invalid token, got %v", err)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &lifecycleContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the house menu$`, tc.theHouseMenu)
	ctx.Step(`^a customer "([^"]*)"$`, tc.aCustomer)
	ctx.Step(`^an admin "([^"]*)"$`, tc.anAdmin)
	ctx.Step(`^menu item "([^"]*)" is unavailable$`, tc.menuItemIsUnavailable)
	ctx.Step(`^a token for "([^"]*)" valid for (\d+) seconds$`, tc.aTokenValidFor)

	// When steps
	ctx.Step(`^"([^"]*)" orders (-?\d+) of "([^"]*)"$`, tc.orders)
	ctx.Step(`^"([^"]*)" orders (-?\d+) of "([^"]*)" and (-?\d+) of "([^"]*)"$`, tc.ordersTwo)
	ctx.Step(`^"([^"]*)" places an empty order$`, tc.placesAnEmptyOrder)
	ctx.Step(`^menu item "([^"]*)" is repriced to "([^"]*)"$`, tc.menuItemIsRepriced)
	ctx.Step(`^"([^"]*)" views the order$`, tc.viewsTheOrder)
	ctx.Step(`^"([^"]*)" sets the order status to "([^"]*)"$`, tc.setsTheOrderStatus)
	ctx.Step(`^"([^"]*)" cancels the order$`, tc.cancelsTheOrder)
	ctx.Step(`^(\d+) seconds pass$`, tc.secondsPass)

	// Then steps
	ctx.Step(`^the order charges are subtotal "([^"]*)", tax "([^"]*)" and total "([^"]*)"$`, tc.theChargesAre)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the timeline has (\d+) entries$`, tc.theTimelineHasEntries)
	ctx.Step(`^the last timeline entry is by "([^"]*)"$`, tc.theLastTimelineEntryIsBy)
	ctx.Step(`^line (\d+) has quantity (\d+)$`, tc.lineHasQuantity)
	ctx.Step(`^line (\d+) has unit price "([^"]*)"$`, tc.lineHasUnitPrice)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
	ctx.Step(`^"([^"]*)" sees (\d+) orders$`, tc.seesOrders)
	ctx.Step(`^the token verifies as "([^"]*)"$`, tc.theTokenVerifiesAs)
	ctx.Step(`^the token is rejected$`, tc.theTokenIsRejected)
	ctx.Step(`^the token is rejected with secret "([^"]*)"$`, tc.theTokenIsRejectedWithSecret)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"order_lifecycle.feature"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
