// Package cart holds the per-session cart ledger and the cart view
// calculation.
package cart

import (
	"slices"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

const (
	// MaxQuantity bounds the quantity of a single entry. At this bound a full
	// ledger still fits receipt_items.quantity (INTEGER) and
	// receipts.total_price (NUMERIC(12,2)).
	MaxQuantity = 999
	// MaxEntries bounds the number of distinct product ids in a ledger so the
	// encoded ledger stays well inside the 4096 byte session cookie.
	MaxEntries = 20
)

var (
	// ErrInvalidQuantity is returned when a quantity is not an integer in
	// [1, MaxQuantity], including after merging into an existing entry.
	ErrInvalidQuantity = errors.New("quantity must be a whole number between 1 and 999")
	// ErrFull is returned when adding a new product id to a ledger that
	// already holds MaxEntries entries.
	ErrFull = errors.New("cart is full")
)

// Entry is a single product line in a ledger.
type Entry struct {
	ProductID int
	Quantity  int
}

// Ledger is an ordered set of entries keyed by product id. The zero value is
// an empty ledger. A Ledger is owned by one session and is not safe for
// concurrent use.
type Ledger struct {
	entries []Entry
}

// NewLedger returns a ledger holding the given entries, merging duplicates.
func NewLedger(entries ...Entry) (*Ledger, error) {
	l := &Ledger{}
	for _, e := range entries {
		if err := l.Add(e.ProductID, e.Quantity); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add increments the quantity of an existing entry for productID or appends a
// new entry. The product id is not checked against the catalog here. On error
// the ledger is unchanged.
func (l *Ledger) Add(productID, quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return errors.Wrapf(ErrInvalidQuantity, "add product %d", productID)
	}
	for i := range l.entries {
		if l.entries[i].ProductID != productID {
			continue
		}
		if quantity > MaxQuantity-l.entries[i].Quantity {
			return errors.Wrapf(ErrInvalidQuantity, "add product %d: %d already in cart", productID, l.entries[i].Quantity)
		}
		l.entries[i].Quantity += quantity
		return nil
	}
	if len(l.entries) >= MaxEntries {
		return errors.Wrapf(ErrFull, "add product %d", productID)
	}
	l.entries = append(l.entries, Entry{ProductID: productID, Quantity: quantity})
	return nil
}

// Entries returns a copy of the entries in insertion order.
func (l *Ledger) Entries() []Entry {
	if l == nil {
		return nil
	}
	return slices.Clone(l.entries)
}

// Empty reports whether the ledger has no entries. A nil ledger is empty.
func (l *Ledger) Empty() bool {
	return l == nil || len(l.entries) == 0
}

// Count returns the total quantity across all entries, including entries
// whose product is unknown to the catalog.
func (l *Ledger) Count() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, e := range l.entries {
		n += e.Quantity
	}
	return n
}

// Clear removes every entry.
func (l *Ledger) Clear() {
	l.entries = nil
}

// ParseQuantity parses a submitted quantity. A missing or blank value means 1;
// anything that is not an integer in [1, MaxQuantity] is rejected.
func ParseQuantity(raw string, present bool) (int, error) {
	raw = strings.TrimSpace(raw)
	if !present || raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidQuantity, "parse %q", raw)
	}
	if n < 1 || n > MaxQuantity {
		return 0, errors.Wrapf(ErrInvalidQuantity, "parse %q", raw)
	}
	return n, nil
}
