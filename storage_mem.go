package databook

import (
	"bytes"
	"errors"
	"maps"
	"slices"
	"sync"
)

var (
	errMemClosed      = errors.New("memory storage closed")
	errMemTxReadOnly  = errors.New("read-only transaction")
	errMemTxFinalized = errors.New("transaction already finished")
)

// memStorage keeps committed buckets in an immutable map. Readers share the
// committed state without copying. A writer copies the bucket map and each
// bucket it modifies, then swaps the map in on commit.
type memStorage struct {
	mu       sync.Mutex
	released *sync.Cond
	state    map[string]*memBucket
	writing  bool
	closed   bool
}

func newMemStorage() storage {
	s := &memStorage{state: make(map[string]*memBucket)}
	s.released = sync.NewCond(&s.mu)
	return s
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for writable && s.writing && !s.closed {
		s.released.Wait()
	}
	if s.closed {
		return nil, errMemClosed
	}
	tx := &memStorageTx{st: s, writable: writable, buckets: s.state}
	if writable {
		s.writing = true
		tx.owned = make(map[string]bool)
	}
	return tx, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.state = nil
	s.released.Broadcast()
	return nil
}

type memStorageTx struct {
	st       *memStorage
	writable bool
	done     bool
	buckets  map[string]*memBucket
	copied   bool
	owned    map[string]bool
}

func (tx *memStorageTx) Writable() bool { return tx.writable }

func (tx *memStorageTx) Bucket(name string) storageBucket {
	tx.mustBeOpen()
	if tx.buckets[name] == nil {
		return nil
	}
	return memBucketView{tx: tx, name: name}
}

func (tx *memStorageTx) CreateBucket(name string) (storageBucket, error) {
	tx.mustBeOpen()
	if !tx.writable {
		return nil, errMemTxReadOnly
	}
	if tx.buckets[name] == nil {
		tx.own(name)
	}
	return memBucketView{tx: tx, name: name}, nil
}

func (tx *memStorageTx) Commit() error {
	if !tx.writable {
		return errMemTxReadOnly
	}
	if tx.done {
		return errMemTxFinalized
	}
	s := tx.st
	s.mu.Lock()
	defer s.mu.Unlock()
	defer tx.finishLocked()
	if s.closed {
		return errMemClosed
	}
	s.state = tx.buckets
	return nil
}

func (tx *memStorageTx) Rollback() error {
	tx.st.mu.Lock()
	defer tx.st.mu.Unlock()
	tx.finishLocked()
	return nil
}

func (tx *memStorageTx) finishLocked() {
	if tx.done {
		return
	}
	tx.done = true
	tx.buckets = nil
	if tx.writable {
		tx.st.writing = false
		tx.st.released.Broadcast()
	}
}

func (tx *memStorageTx) mustBeOpen() {
	if tx.done {
		panic(errMemTxFinalized)
	}
}

// own returns a private copy of the named bucket, creating it if needed.
func (tx *memStorageTx) own(name string) *memBucket {
	if tx.owned[name] {
		return tx.buckets[name]
	}
	if !tx.copied {
		tx.buckets = maps.Clone(tx.buckets)
		tx.copied = true
	}
	b := &memBucket{}
	if old := tx.buckets[name]; old != nil {
		b.items = slices.Clone(old.items)
	}
	tx.buckets[name] = b
	tx.owned[name] = true
	return b
}

// memBucket holds items sorted by key. Committed buckets are never modified;
// key and value slices are never modified after insertion.
type memBucket struct {
	items []memItem
}

type memItem struct {
	key, value []byte
}

func (b *memBucket) search(key []byte) (int, bool) {
	return slices.BinarySearchFunc(b.items, key, func(it memItem, k []byte) int {
		return bytes.Compare(it.key, k)
	})
}

type memBucketView struct {
	tx   *memStorageTx
	name string
}

func (v memBucketView) current() *memBucket {
	v.tx.mustBeOpen()
	return v.tx.buckets[v.name]
}

func (v memBucketView) writable() (*memBucket, error) {
	v.tx.mustBeOpen()
	if !v.tx.writable {
		return nil, errMemTxReadOnly
	}
	return v.tx.own(v.name), nil
}

func (v memBucketView) Get(key []byte) []byte {
	b := v.current()
	if i, found := b.search(key); found {
		return b.items[i].value
	}
	return nil
}

func (v memBucketView) Put(key, value []byte) error {
	b, err := v.writable()
	if err != nil {
		return err
	}
	value = bytes.Clone(value)
	if value == nil {
		value = []byte{}
	}
	i, found := b.search(key)
	if found {
		b.items[i].value = value
	} else {
		b.items = slices.Insert(b.items, i, memItem{bytes.Clone(key), value})
	}
	return nil
}

func (v memBucketView) Delete(key []byte) error {
	b, err := v.writable()
	if err != nil {
		return err
	}
	if i, found := b.search(key); found {
		b.items = slices.Delete(b.items, i, i+1)
	}
	return nil
}

func (v memBucketView) ForEach(fn func(key, value []byte) error) error {
	for _, it := range v.current().items {
		if err := fn(it.key, it.value); err != nil {
			return err
		}
	}
	return nil
}

func (v memBucketView) Stats() bucketStats {
	items := v.current().items
	var size int64
	for _, it := range items {
		size += int64(len(it.key) + len(it.value))
	}
	return bucketStats{KeyN: len(items), LeafInuse: size, LeafAlloc: size}
}

func (v memBucketView) KeyCount() int { return len(v.current().items) }
