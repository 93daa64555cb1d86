package kvio

import (
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v2"
	"github.com/gnames/gnbarcode/internal/ent/kv"
	"github.com/gnames/gnsys"
)

type kvio struct {
	dir string
	kv  *badger.DB
	txn *badger.Txn
}

// New returns a new instance of kvio. The store directory is created
// and emptied, a run never sees stale keys from a previous run.
func New(dir string) (kv.KeyVal, error) {
	res := kvio{
		dir: dir,
	}

	err := gnsys.MakeDir(dir)
	if err != nil {
		slog.Error("Cannot create directory", "error", err, "dir", dir)
		return nil, err
	}

	err = gnsys.CleanDir(dir)
	if err != nil {
		slog.Error("Cannot reset KeyValue", "error", err, "dir", dir)
		return nil, err
	}

	return &res, err
}

// Open opens a key-value store.
func (k *kvio) Open() error {
	if k.kv != nil {
		slog.Warn("key-value store is not nil")
	}
	options := badger.DefaultOptions(k.dir)
	options.Logger = nil

	bdb, err := badger.Open(options)
	if err != nil {
		return err
	}
	k.kv = bdb
	return nil
}

// Close commits a pending write transaction and closes the store.
func (k *kvio) Close() error {
	if k.kv == nil {
		slog.Warn("key-value store is nil")
		return nil
	}
	if k.txn != nil {
		err := k.txn.Commit()
		k.txn = nil
		if err != nil {
			slog.Error("cannot commit key/value transaction", "error", err)
			return err
		}
	}
	err := k.kv.Close()
	k.kv = nil
	return err
}

// Set stores a key-value pair, first write wins. It reports whether
// the key already existed. Oversized transactions are committed and
// restarted.
func (k *kvio) Set(key, val []byte) (bool, error) {
	if k.kv == nil {
		return false, errors.New("key-value store is not open")
	}
	if k.txn == nil {
		k.txn = k.kv.NewTransaction(true)
	}

	_, err := k.txn.Get(key)
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
	default:
		return false, err
	}

	err = k.txn.Set(key, val)
	if err == badger.ErrTxnTooBig {
		if err = k.txn.Commit(); err != nil {
			slog.Error("cannot commit key/value transaction", "error", err)
			return false, err
		}
		k.txn = k.kv.NewTransaction(true)
		err = k.txn.Set(key, val)
	}
	if err != nil {
		slog.Error("cannot set key/value", "error", err)
		return false, err
	}
	return false, nil
}

// GetValue returns a value for a given key, nil when the key does not
// exist. Pending writes are committed first so lookups see them.
func (k *kvio) GetValue(key []byte) ([]byte, error) {
	if k.kv == nil {
		return nil, errors.New("key-value store is not open")
	}
	if k.txn != nil {
		if err := k.txn.Commit(); err != nil {
			slog.Error("cannot commit key/value transaction", "error", err)
			return nil, err
		}
		k.txn = nil
	}

	txn := k.kv.NewTransaction(false)
	defer txn.Discard()
	val, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var res []byte
	return val.ValueCopy(res)
}
