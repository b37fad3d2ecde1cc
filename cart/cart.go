// Package cart models the client-held shopping cart: an ordered
// multiset of product ids where N occurrences of an id mean quantity N.
// The cart is never stored server-side; it travels in a signed cookie
// and is reconstructed on every request.
package cart

import (
	"encoding/json"

	"github.com/google/uuid"
)

type Cart []uuid.UUID

// Decode parses the cookie payload. A malformed payload yields an empty
// cart rather than an error; a tampered cookie already fails signature
// verification before reaching this point.
func Decode(payload string) Cart {
	if payload == "" {
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal([]byte(payload), &ids); err != nil {
		return nil
	}
	return ids
}

func (c Cart) Encode() string {
	if len(c) == 0 {
		return "[]"
	}
	b, _ := json.Marshal([]uuid.UUID(c))
	return string(b)
}

func (c Cart) Empty() bool {
	return len(c) == 0
}

// Count returns the occurrence count of id, i.e. its quantity.
func (c Cart) Count(id uuid.UUID) int {
	n := 0
	for _, v := range c {
		if v == id {
			n++
		}
	}
	return n
}

// Counts groups the multiset into quantity per distinct product id.
func (c Cart) Counts() map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(c))
	for _, v := range c {
		counts[v]++
	}
	return counts
}

// Add appends one occurrence unconditionally.
func (c Cart) Add(id uuid.UUID) Cart {
	return append(c, id)
}

// Increase appends one occurrence only while the current count is
// strictly below the product's live stock. True availability is still
// re-checked at checkout under row locks.
func (c Cart) Increase(id uuid.UUID, stock int) Cart {
	if c.Count(id) >= stock {
		return c
	}
	return append(c, id)
}

// Decrease removes the first occurrence of id.
func (c Cart) Decrease(id uuid.UUID) Cart {
	for i, v := range c {
		if v == id {
			out := make(Cart, 0, len(c)-1)
			out = append(out, c[:i]...)
			return append(out, c[i+1:]...)
		}
	}
	return c
}

// Remove drops every occurrence of id.
func (c Cart) Remove(id uuid.UUID) Cart {
	out := make(Cart, 0, len(c))
	for _, v := range c {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
