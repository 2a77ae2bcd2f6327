package databook

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"
)

const defaultBucket = "trees"

// Shelf keeps named trees in a key-value store, one framed record per tree.
// It is safe for concurrent use: writers are serialized by the backend and
// readers see a consistent snapshot.
type Shelf struct {
	st       storage
	bucket   string
	compress bool
	logger   *slog.Logger

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
}

type Options struct {
	Logger    *slog.Logger
	IsTesting bool
	NoSync    bool
	MmapSize  int

	// Bucket names the Bolt bucket trees are kept in; defaults to "trees".
	Bucket string

	// Compress snappy-compresses records on Put. Reading handles both forms.
	Compress bool
}

// Open opens or creates a Bolt-backed shelf at path.
func Open(path string, opt Options) (*Shelf, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.NoSync {
		bopt.NoSync = true
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("databook: %w", err)
	}
	sh := newShelf(newBoltStorage(bdb), opt)
	if err := sh.prepare(); err != nil {
		bdb.Close()
		return nil, err
	}
	sh.log(slog.LevelInfo, "databook: opened shelf", slog.String("path", path), slog.String("bucket", sh.bucket))
	return sh, nil
}

// OpenMemory returns a transient shelf that keeps everything in memory.
func OpenMemory(opt Options) *Shelf {
	sh := newShelf(newMemStorage(), opt)
	ensure(sh.prepare())
	return sh
}

func newShelf(st storage, opt Options) *Shelf {
	bucket := opt.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	return &Shelf{
		st:       st,
		bucket:   bucket,
		compress: opt.Compress,
		logger:   opt.Logger,
	}
}

func (sh *Shelf) prepare() error {
	return sh.write(func(b storageBucket) error { return nil })
}

func (sh *Shelf) Close() error {
	return sh.st.Close()
}

// Put stores the tree under name, replacing any previous tree.
func (sh *Shelf) Put(name string, n *Node) error {
	if name == "" {
		return fmt.Errorf("databook: empty tree name")
	}
	buf := recordBytesPool.Get().([]byte)
	raw, err := encodeRecord(buf[:0], n, sh.compress)
	defer releaseRecordBytes(raw)
	if err != nil {
		return fmt.Errorf("databook: shelving %q: %w", name, err)
	}
	err = sh.write(func(b storageBucket) error {
		return b.Put([]byte(name), raw)
	})
	if err != nil {
		return err
	}
	sh.WriteCount.Add(1)
	sh.log(slog.LevelDebug, "databook: put", slog.String("tree", name), slog.Int("size", len(raw)))
	return nil
}

// Get decodes the tree stored under name. A missing tree fails with
// ErrKeyNotFound, a damaged record with *DataError.
func (sh *Shelf) Get(name string) (*Node, error) {
	var n *Node
	err := sh.read(func(b storageBucket) error {
		raw := b.Get([]byte(name))
		if raw == nil {
			return notShelved(name)
		}
		var err error
		n, err = decodeRecord(raw)
		if err != nil {
			sh.log(slog.LevelWarn, "databook: damaged record", slog.String("tree", name), hexAttr("head", raw[:min(len(raw), 16)]))
			return fmt.Errorf("databook: loading %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sh.ReadCount.Add(1)
	sh.log(slog.LevelDebug, "databook: get", slog.String("tree", name), slog.Int("fields", n.Len()))
	return n, nil
}

func (sh *Shelf) Has(name string) (bool, error) {
	var found bool
	err := sh.read(func(b storageBucket) error {
		found = b.Get([]byte(name)) != nil
		return nil
	})
	return found, err
}

// Delete removes the tree stored under name, failing with ErrKeyNotFound if
// there is none.
func (sh *Shelf) Delete(name string) error {
	err := sh.write(func(b storageBucket) error {
		if b.Get([]byte(name)) == nil {
			return notShelved(name)
		}
		return b.Delete([]byte(name))
	})
	if err != nil {
		return err
	}
	sh.log(slog.LevelDebug, "databook: delete", slog.String("tree", name))
	return nil
}

// Names returns the names of all stored trees in sorted order.
func (sh *Shelf) Names() ([]string, error) {
	var names []string
	err := sh.read(func(b storageBucket) error {
		names = make([]string, 0, b.KeyCount())
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Shelve captures a tree with fn and stores it under name.
func Shelve(sh *Shelf, name string, fn func(nb *Notebook) error) error {
	n, err := Capture(fn)
	if err != nil {
		return err
	}
	return sh.Put(name, n)
}

// Unshelve loads the tree stored under name and replays it through fn.
func Unshelve(sh *Shelf, name string, fn func(nb *Notebook) error) error {
	n, err := sh.Get(name)
	if err != nil {
		return err
	}
	return Replay(n, fn)
}

func notShelved(name string) error {
	return fmt.Errorf("databook: tree %q: %w", name, ErrKeyNotFound)
}

func (sh *Shelf) read(f func(b storageBucket) error) error {
	tx, err := sh.st.BeginTx(false)
	if err != nil {
		return fmt.Errorf("databook: %w", err)
	}
	defer tx.Rollback()
	b := tx.Bucket(sh.bucket)
	if b == nil {
		return fmt.Errorf("databook: missing bucket %q", sh.bucket)
	}
	return f(b)
}

func (sh *Shelf) write(f func(b storageBucket) error) error {
	tx, err := sh.st.BeginTx(true)
	if err != nil {
		return fmt.Errorf("databook: %w", err)
	}
	defer tx.Rollback()
	b, err := tx.CreateBucket(sh.bucket)
	if err != nil {
		return fmt.Errorf("databook: %w", err)
	}
	if err := f(b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("databook: commit: %w", err)
	}
	return nil
}

func (sh *Shelf) log(level slog.Level, msg string, attrs ...slog.Attr) {
	if sh.logger == nil {
		return
	}
	sh.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
