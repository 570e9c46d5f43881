// cart.go - Client-side cart that mirrors the server cart and keeps sibling instances in step
//
// Authenticated carts send every mutation to the API, refetch the canonical cart and
// broadcast it. Anonymous carts mutate local state, persist it and broadcast it.

package cartsync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"cafesantander/apperr"
	"cafesantander/realtime"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// ErrNotWatchable is returned by Watch when the store cannot report outside writes.
var ErrNotWatchable = errors.New("cartsync: store does not support watching")

type Options struct {
	API      *APIClient         // Nil or tokenless for an anonymous visitor
	Store    Store              // Defaults to a fresh MemoryStore
	Bus      *Bus               // Defaults to a private bus
	OnChange func(items []Item) // Called after every change of the item list
}

// Cart is one consumer's view of the cart.
type Cart struct {
	api      *APIClient
	store    Store
	bus      *Bus
	origin   string
	onChange func([]Item)

	mu    sync.Mutex
	items []Item

	unsubscribe func()
	closeOnce   sync.Once
}

func New(opts Options) *Cart {
	c := &Cart{
		api:      opts.API,
		store:    opts.Store,
		bus:      opts.Bus,
		origin:   NewOrigin(),
		onChange: opts.OnChange,
		items:    []Item{},
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	if c.bus == nil {
		c.bus = NewBus()
	}
	c.unsubscribe = c.bus.Subscribe(c.origin, func(msg Message) { c.replace(msg.Items, false) })
	return c
}

// Authenticated reports whether mutations go to the server.
func (c *Cart) Authenticated() bool { return c.api != nil && c.api.Token != "" }

// Load reads the canonical cart: from the API when authenticated, from the store otherwise.
func (c *Cart) Load(ctx context.Context) error {
	if c.Authenticated() {
		return c.refetch(ctx)
	}
	migrateLegacy(c.store)
	c.replace(readState(c.store).Cart, true)
	return nil
}

// AddItem adds item.Quantity units (at least one) of item.ProductID.
func (c *Cart) AddItem(ctx context.Context, item Item) error {
	if item.ProductID == 0 {
		return apperr.Validation("productId is required")
	}
	qty := item.Quantity
	if qty <= 0 {
		qty = 1
	}
	if c.Authenticated() {
		if err := c.api.Add(ctx, item.ProductID, qty); err != nil {
			return err
		}
		return c.refetch(ctx)
	}
	return c.mutateLocal(func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Quantity += qty
				return items
			}
		}
		item.Quantity = qty
		item.ItemID = 0
		return append(items, item)
	})
}

// UpdateQuantity sets the quantity of productID. Zero or less removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, productID uint, quantity int) error {
	if c.Authenticated() {
		line, ok := c.find(productID)
		if !ok {
			return apperr.NotFound("item not in cart")
		}
		var err error
		if quantity <= 0 {
			err = c.api.Remove(ctx, line.ItemID)
		} else {
			err = c.api.Update(ctx, line.ItemID, quantity)
		}
		if err != nil {
			return err
		}
		return c.refetch(ctx)
	}
	return c.mutateLocal(func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ProductID == productID {
				it.Quantity = quantity
			}
			if it.Quantity > 0 {
				out = append(out, it)
			}
		}
		return out
	})
}

// RemoveItem drops productID from the cart.
func (c *Cart) RemoveItem(ctx context.Context, productID uint) error {
	if c.Authenticated() {
		line, ok := c.find(productID)
		if !ok {
			return apperr.NotFound("item not in cart")
		}
		if err := c.api.Remove(ctx, line.ItemID); err != nil {
			return err
		}
		return c.refetch(ctx)
	}
	return c.mutateLocal(func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				out = append(out, it)
			}
		}
		return out
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	if c.Authenticated() {
		if err := c.api.Clear(ctx); err != nil {
			return err
		}
		return c.refetch(ctx)
	}
	return c.mutateLocal(func([]Item) []Item { return []Item{} })
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Count is the sum of quantities, computed from the current lines on every call.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return countOf(c.items)
}

// Total is the sum of price times quantity, computed from the current lines on every call.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// Follow listens on the cart socket and refetches on every push until ctx is done.
// An empty wsURL is derived from the API base URL.
func (c *Cart) Follow(ctx context.Context, wsURL string) error {
	if !c.Authenticated() {
		return apperr.Unauthenticated("cart push needs a token")
	}
	if wsURL == "" {
		wsURL = c.api.SocketURL()
	}
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+c.api.Token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, hdr)
	if err != nil {
		return apperr.Unexpected("cart socket dial failed", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close() // Unblocks ReadMessage
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return apperr.Unexpected("cart socket closed", err)
		}
		var ev realtime.Event
		if err := json.Unmarshal(data, &ev); err != nil || ev.Type != realtime.EventCart {
			continue
		}
		if err := c.refetch(ctx); err != nil {
			slog.Warn("cartsync: refetch after push failed, using pushed cart", "err", err)
			c.replace(fromContents(ev.Cart), true)
		}
	}
}

// Watch reloads the anonymous cart whenever another process rewrites the shared store.
// It blocks until ctx is done.
func (c *Cart) Watch(ctx context.Context) error {
	w, ok := c.store.(Watcher)
	if !ok {
		return ErrNotWatchable
	}
	return w.Watch(ctx, func(key string) {
		if c.Authenticated() {
			return
		}
		switch key {
		case LegacyCartKey:
			migrateLegacy(c.store)
		case StateKey:
		default:
			return
		}
		c.replace(readState(c.store).Cart, false)
	})
}

// Close detaches the cart from the bus.
func (c *Cart) Close() {
	c.closeOnce.Do(c.unsubscribe)
}

func (c *Cart) refetch(ctx context.Context) error {
	contents, err := c.api.Cart(ctx)
	if err != nil {
		return err
	}
	c.replace(fromContents(contents), true)
	return nil
}

// mutateLocal applies fn to a copy of the items, persists the result and broadcasts it.
// Two instances writing at once interleave; the last persisted write wins.
func (c *Cart) mutateLocal(fn func([]Item) []Item) error {
	c.mu.Lock()
	next := fn(cloneItems(c.items))
	c.mu.Unlock()

	st := readState(c.store)
	st.Cart = next
	if err := writeState(c.store, st); err != nil {
		return apperr.Unexpected("failed to persist cart", err)
	}
	c.replace(next, true)
	return nil
}

// replace swaps the item list, notifies OnChange and optionally broadcasts.
func (c *Cart) replace(items []Item, broadcast bool) {
	if items == nil {
		items = []Item{}
	}
	c.mu.Lock()
	c.items = cloneItems(items)
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(cloneItems(items))
	}
	if broadcast {
		c.bus.Publish(Message{Origin: c.origin, Items: items, Count: countOf(items)})
	}
}

func (c *Cart) find(productID uint) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return Item{}, false
}
