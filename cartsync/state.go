// state.go - Persisted client state and the conversion from the server cart

package cartsync

import (
	"encoding/json"
	"errors"
	"log/slog"

	"cafesantander/cart"

	"github.com/shopspring/decimal"
)

const (
	StateKey      = "cafesantander_state" // {cart, user} blob
	LegacyCartKey = "cafesantander_cart"  // Bare item array written by older clients
)

// Item is the client-side view of one cart line.
type Item struct {
	ProductID uint            `json:"id"`
	ItemID    uint            `json:"itemId,omitempty"` // Server line id, zero for anonymous carts
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// State is the single persisted blob. User is kept opaque.
type State struct {
	Cart []Item          `json:"cart"`
	User json.RawMessage `json:"user"`
}

// fromContents maps the server payload to client items.
func fromContents(c cart.Contents) []Item {
	items := make([]Item, 0, len(c.Items))
	for _, l := range c.Items {
		items = append(items, Item{
			ProductID: l.ProductID,
			ItemID:    l.ID,
			Name:      l.Name,
			Image:     l.Image,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// migrateLegacy moves an old bare cart array into the state blob when no blob exists yet.
func migrateLegacy(s Store) {
	old, err := s.Get(LegacyCartKey)
	if err != nil {
		return
	}
	if _, err := s.Get(StateKey); !errors.Is(err, ErrNoKey) {
		return
	}

	var items []Item
	if json.Unmarshal(old, &items) != nil {
		items = []Item{} // Not an array, start empty
	}
	if err := writeState(s, State{Cart: items, User: json.RawMessage("null")}); err != nil {
		slog.Warn("cartsync: legacy cart not migrated", "err", err)
		return
	}
	if err := s.Delete(LegacyCartKey); err != nil {
		slog.Warn("cartsync: legacy cart key not removed", "err", err)
	}
}

// readState returns the stored state. Missing or unreadable data yields an empty cart.
func readState(s Store) State {
	st := State{Cart: []Item{}, User: json.RawMessage("null")}
	raw, err := s.Get(StateKey)
	if err != nil {
		return st
	}
	var parsed State
	if json.Unmarshal(raw, &parsed) != nil {
		return st
	}
	if parsed.Cart != nil {
		st.Cart = parsed.Cart
	}
	if len(parsed.User) > 0 {
		st.User = parsed.User
	}
	return st
}

func writeState(s Store, st State) error {
	if st.Cart == nil {
		st.Cart = []Item{}
	}
	if len(st.User) == 0 {
		st.User = json.RawMessage("null")
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.Set(StateKey, b)
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

func countOf(items []Item) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
