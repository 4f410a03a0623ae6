package storage

import (
	"bytes"
	"slices"
)

// Namespace is a view of a DB restricted to keys under one prefix. Keys
// passed in and handed out are relative to that prefix.
type Namespace struct {
	db     DB
	prefix []byte
}

// NewNamespace returns the namespace of db under prefix.
func NewNamespace(db DB, prefix []byte) *Namespace {
	return &Namespace{db: db, prefix: bytes.Clone(prefix)}
}

func (n *Namespace) key(k []byte) []byte {
	return slices.Concat(n.prefix, k)
}

// Get returns ErrNotFound for a missing key.
func (n *Namespace) Get(key []byte) ([]byte, error) {
	return n.db.Get(n.key(key))
}

// Has reports whether key is set.
func (n *Namespace) Has(key []byte) (bool, error) {
	return n.db.Has(n.key(key))
}

// Put sets key outside of any batch.
func (n *Namespace) Put(key, value []byte) error {
	return n.db.Put(n.key(key), value)
}

// ForEach walks the keys under prefix within the namespace.
func (n *Namespace) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return n.db.ForEach(n.key(prefix), func(key, value []byte) error {
		return fn(key[len(n.prefix):], value)
	})
}

// NewBatch returns a batch whose keys land in the namespace.
func (n *Namespace) NewBatch() Batch {
	return &namespaceBatch{Batch: n.db.NewBatch(), ns: n}
}

// Drop deletes every key in the namespace in one batch.
func (n *Namespace) Drop() error {
	b := n.db.NewBatch()
	err := n.db.ForEach(n.prefix, func(key, _ []byte) error {
		return b.Delete(key)
	})
	if err != nil {
		return err
	}
	return b.Commit()
}

type namespaceBatch struct {
	Batch
	ns *Namespace
}

func (b *namespaceBatch) Put(key, value []byte) error {
	return b.Batch.Put(b.ns.key(key), value)
}

func (b *namespaceBatch) Delete(key []byte) error {
	return b.Batch.Delete(b.ns.key(key))
}
