// Package store defines the persistence ports shared by every backend.
//
// Repositories expose synchronous list/upsert/delete per entity and notify
// registered listeners after each successful write.
package store

import (
	"context"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("record not found")

// Entity names the record collection a change touched.
type Entity string

const (
	EntityTransaction  Entity = "transaction"
	EntityBudget       Entity = "budget"
	EntitySubscription Entity = "subscription"
)

type ChangeKind string

const (
	ChangeUpsert ChangeKind = "upsert"
	ChangeDelete ChangeKind = "delete"
)

// Change describes one successful write. Key is the record id, or the month
// key for budgets.
type Change struct {
	Entity Entity     `json:"entity"`
	Kind   ChangeKind `json:"kind"`
	Key    string     `json:"key"`
}

// Listener is called after a write commits. It must not call back into the
// repository synchronously.
type Listener func(ctx context.Context, c Change)

// Notifier keeps an ordered list of listeners. The zero value is ready to use.
type Notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
	order     []int
}

// Subscribe registers l and returns a function that removes it.
func (n *Notifier) Subscribe(l Listener) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[int]Listener)
	}
	id := n.nextID
	n.nextID++
	n.listeners[id] = l
	n.order = append(n.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.listeners, id)
			for i, v := range n.order {
				if v == id {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Notify calls every listener in subscription order.
func (n *Notifier) Notify(ctx context.Context, c Change) {
	n.mu.Lock()
	ls := make([]Listener, 0, len(n.order))
	for _, id := range n.order {
		ls = append(ls, n.listeners[id])
	}
	n.mu.Unlock()

	for _, l := range ls {
		l(ctx, c)
	}
}
