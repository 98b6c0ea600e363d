package guest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// exerciseSlot runs the shared Get/Set/Delete contract against a backend.
func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := slot.Get(ctx, "shopsync.cart"); err != nil || found {
		t.Fatalf("Get on empty slot = found %v, err %v", found, err)
	}

	if err := slot.Set(ctx, "shopsync.cart", []byte(`[{"productId":"7"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := slot.Set(ctx, "shopsync.cart", []byte(`[]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	data, found, err := slot.Get(ctx, "shopsync.cart")
	if err != nil || !found {
		t.Fatalf("Get after Set = found %v, err %v", found, err)
	}
	if string(data) != "[]" {
		t.Errorf("Get = %q, want []", data)
	}

	if err := slot.Delete(ctx, "shopsync.cart"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := slot.Delete(ctx, "shopsync.cart"); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
	if _, found, _ := slot.Get(ctx, "shopsync.cart"); found {
		t.Error("key still present after Delete")
	}
}

func TestMemorySlot(t *testing.T) {
	exerciseSlot(t, NewMemorySlot())
}

func TestMemorySlot_CopiesValues(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	buf := []byte("abc")
	slot.Set(ctx, "k", buf)
	buf[0] = 'x'

	got, _, _ := slot.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value aliased caller buffer: %q", got)
	}
}

func TestFileSlot(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "guest"))
	if err != nil {
		t.Fatalf("NewFileSlot: %v", err)
	}
	exerciseSlot(t, slot)
}

func TestFileSlot_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	slot, _ := NewFileSlot(dir)
	slot.Set(context.Background(), "shopsync.wishlist", []byte(`["1"]`))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "shopsync.wishlist.json" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contents = %v, want only shopsync.wishlist.json", names)
	}
}

func TestFileSlot_RejectsPathKeys(t *testing.T) {
	slot, _ := NewFileSlot(t.TempDir())
	for _, key := range []string{"", "../escape", `a\b`, ".."} {
		if err := slot.Set(context.Background(), key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestSQLiteSlot(t *testing.T) {
	slot, err := NewSQLiteSlot(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteSlot: %v", err)
	}
	defer slot.Close()
	exerciseSlot(t, slot)
}

func TestSQLiteSlot_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "guest.db")

	first, err := NewSQLiteSlot(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Set(ctx, "shopsync.token", []byte("tok")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first.Close()

	second, err := NewSQLiteSlot(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	data, found, err := second.Get(ctx, "shopsync.token")
	if err != nil || !found || string(data) != "tok" {
		t.Errorf("Get after reopen = %q, %v, %v", data, found, err)
	}
}

func TestRedisSlot(t *testing.T) {
	url := os.Getenv("SHOPSYNC_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SHOPSYNC_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	slot, err := NewRedisSlot(ctx, url, "shopsync-test:", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisSlot: %v", err)
	}
	defer slot.Close()
	exerciseSlot(t, slot)
}

func TestRedisSlot_BadURL(t *testing.T) {
	if _, err := NewRedisSlot(context.Background(), "not a url", "", 0); err == nil {
		t.Error("expected error for malformed redis url")
	}
}
