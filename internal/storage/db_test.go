package storage

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func backends(t *testing.T) map[string]DB {
	t.Helper()
	bdb, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	t.Cleanup(func() { bdb.Close() })
	return map[string]DB{"memory": NewMemory(), "badger": bdb}
}

func mustGet(t *testing.T, db interface {
	Get([]byte) ([]byte, error)
}, key string) string {
	t.Helper()
	v, err := db.Get([]byte(key))
	if err != nil {
		t.Fatalf("Get(%q) error: %v", key, err)
	}
	return string(v)
}

func TestDB_ReadWrite(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := db.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() missing error = %v, want ErrNotFound", err)
			}
			if err := db.Put([]byte("k"), []byte("v1")); err != nil {
				t.Fatalf("Put() error: %v", err)
			}
			db.Put([]byte("k"), []byte("v2"))
			if got := mustGet(t, db, "k"); got != "v2" {
				t.Errorf("Get() = %q, want v2", got)
			}
			if ok, _ := db.Has([]byte("k")); !ok {
				t.Error("Has() = false after Put")
			}
			if err := db.Delete([]byte("k")); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if ok, _ := db.Has([]byte("k")); ok {
				t.Error("Has() = true after Delete")
			}
		})
	}
}

func TestDB_GetReturnsCopy(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			db.Put([]byte("k"), []byte("abc"))
			v, _ := db.Get([]byte("k"))
			v[0] = 'x'
			if got := mustGet(t, db, "k"); got != "abc" {
				t.Errorf("stored value changed to %q", got)
			}
		})
	}
}

func TestDB_ForEach(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"w/a/1", "w/a/2", "w/b/1", "x"} {
				db.Put([]byte(k), []byte(k))
			}
			var keys []string
			err := db.ForEach([]byte("w/a/"), func(k, v []byte) error {
				if !bytes.Equal(k, v) {
					t.Errorf("value for %q = %q", k, v)
				}
				keys = append(keys, string(k))
				return nil
			})
			if err != nil {
				t.Fatalf("ForEach() error: %v", err)
			}
			slices.Sort(keys)
			if !slices.Equal(keys, []string{"w/a/1", "w/a/2"}) {
				t.Errorf("ForEach() keys = %v", keys)
			}

			stop := errors.New("stop")
			calls := 0
			err = db.ForEach([]byte("w/"), func(_, _ []byte) error {
				calls++
				return stop
			})
			if !errors.Is(err, stop) || calls != 1 {
				t.Errorf("ForEach() stop: err = %v, calls = %d", err, calls)
			}
		})
	}
}

func TestDB_Batch(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			db.Put([]byte("old"), []byte("1"))

			b := db.NewBatch()
			b.Put([]byte("a"), []byte("A"))
			b.Put([]byte("empty"), nil)
			b.Delete([]byte("old"))
			if ok, _ := db.Has([]byte("a")); ok {
				t.Fatal("batch write visible before Commit")
			}
			if err := b.Commit(); err != nil {
				t.Fatalf("Commit() error: %v", err)
			}
			if got := mustGet(t, db, "a"); got != "A" {
				t.Errorf("a = %q", got)
			}
			if ok, _ := db.Has([]byte("empty")); !ok {
				t.Error("empty value not stored")
			}
			if ok, _ := db.Has([]byte("old")); ok {
				t.Error("old not deleted")
			}
		})
	}
}

func TestBadgerDB_Reopen(t *testing.T) {
	dir := t.TempDir()
	db, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	db.Put([]byte("wallet/default/meta"), []byte("m"))
	db.Close()

	db, err = NewBadger(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close()
	if got := mustGet(t, db, "wallet/default/meta"); got != "m" {
		t.Errorf("after reopen = %q", got)
	}
}

func TestBadgerDB_Locked(t *testing.T) {
	dir := t.TempDir()
	db, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger() error: %v", err)
	}
	defer db.Close()
	if _, err := NewBadger(dir); err == nil {
		t.Fatal("second open of a locked directory succeeded")
	}
}
