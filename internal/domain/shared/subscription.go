package shared

import (
	"errors"
	"sort"
	"sync"
)

// Subscription is a handle on a live query. Close stops further deliveries.
type Subscription interface {
	Close() error
}

// SubscriptionFunc adapts an ordinary function to the Subscription interface
type SubscriptionFunc func() error

// Close calls f
func (f SubscriptionFunc) Close() error {
	return f()
}

// ErrSubscriptionTreeClosed is returned when attaching to a closed tree
var ErrSubscriptionTreeClosed = errors.New("subscription tree is closed")

// SubscriptionTree owns subscription handles arranged by parent key.
// Releasing a key closes its whole subtree, children before parents.
// Handles are always closed outside the tree lock, so a subscription callback may
// attach or release other keys while another goroutine closes the tree.
type SubscriptionTree struct {
	mu     sync.Mutex
	nodes  map[string]*subscriptionNode
	roots  map[string]struct{}
	closed bool
}

type subscriptionNode struct {
	parent   string
	sub      Subscription
	children map[string]struct{}
}

// NewSubscriptionTree creates an empty tree
func NewSubscriptionTree() *SubscriptionTree {
	return &SubscriptionTree{
		nodes: make(map[string]*subscriptionNode),
		roots: make(map[string]struct{}),
	}
}

// Attach registers sub under key. An empty parent attaches at the root.
// An existing node with the same key is replaced and its subtree released.
// If the tree is closed or the parent is unknown, sub is closed and an error returned.
func (t *SubscriptionTree) Attach(parent, key string, sub Subscription) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		_ = sub.Close()
		return ErrSubscriptionTreeClosed
	}
	if parent != "" {
		if _, ok := t.nodes[parent]; !ok {
			t.mu.Unlock()
			_ = sub.Close()
			return NewDomainError("NOT_FOUND", "Parent subscription "+parent+" is not attached")
		}
	}

	replaced := t.detachLocked(key)
	t.nodes[key] = &subscriptionNode{
		parent:   parent,
		sub:      sub,
		children: make(map[string]struct{}),
	}
	if parent == "" {
		t.roots[key] = struct{}{}
	} else {
		t.nodes[parent].children[key] = struct{}{}
	}
	t.mu.Unlock()

	return closeAll(replaced)
}

// Release closes key and every descendant. Unknown keys are a no-op.
func (t *SubscriptionTree) Release(key string) error {
	t.mu.Lock()
	subs := t.detachLocked(key)
	t.mu.Unlock()
	return closeAll(subs)
}

// Has reports whether key is attached
func (t *SubscriptionTree) Has(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.nodes[key]
	return ok
}

// Children returns the sorted keys attached directly under parent
func (t *SubscriptionTree) Children(parent string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var set map[string]struct{}
	if parent == "" {
		set = t.roots
	} else if node, ok := t.nodes[parent]; ok {
		set = node.children
	}
	return sortedKeys(set)
}

// Len returns the number of attached subscriptions
func (t *SubscriptionTree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.nodes)
}

// Close releases every subscription and rejects later attachments.
// Calling Close more than once is safe.
func (t *SubscriptionTree) Close() error {
	t.mu.Lock()
	t.closed = true
	var subs []Subscription
	for _, key := range sortedKeys(t.roots) {
		subs = append(subs, t.detachLocked(key)...)
	}
	t.mu.Unlock()
	return closeAll(subs)
}

// detachLocked removes key and its descendants from the tree and returns their
// handles in close order (children first).
func (t *SubscriptionTree) detachLocked(key string) []Subscription {
	node, ok := t.nodes[key]
	if !ok {
		return nil
	}

	var subs []Subscription
	for _, child := range sortedKeys(node.children) {
		subs = append(subs, t.detachLocked(child)...)
	}

	delete(t.nodes, key)
	if node.parent == "" {
		delete(t.roots, key)
	} else if parent, ok := t.nodes[node.parent]; ok {
		delete(parent.children, key)
	}
	return append(subs, node.sub)
}

func closeAll(subs []Subscription) error {
	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
