package imports

import (
	"archive/zip"
	"bytes"
	"testing"
)

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestBuildArchivePool(t *testing.T) {
	data := buildZip(t,
		zipEntry{"images/", nil},
		zipEntry{"__MACOSX/images/._A001.png", []byte("fork")},
		zipEntry{"images/.hidden.png", []byte("dot")},
		zipEntry{"images/A001.png", pngBytes},
		zipEntry{"readme.txt", []byte("hello")},
		zipEntry{"images/B-002.JPG", jpegBytes},
	)

	pool, err := BuildArchivePool(data)
	if err != nil {
		t.Fatalf("BuildArchivePool: %v", err)
	}

	if got, ok := pool.Get("A001"); !ok || !bytes.Equal(got, pngBytes) {
		t.Errorf("A001 = %v, %v", got, ok)
	}
	if got, ok := pool.Get("b002"); !ok || !bytes.Equal(got, jpegBytes) {
		t.Errorf("b002 = %v, %v", got, ok)
	}
	for _, key := range []string{"readme", "._A001", ".hidden", "images"} {
		if _, ok := pool.Get(key); ok {
			t.Errorf("key %q should not be in the pool", key)
		}
	}

	// positions count image entries only
	if got, _ := pool.Get("0"); !bytes.Equal(got, pngBytes) {
		t.Errorf("position 0 = %v", got)
	}
	if got, _ := pool.Get("2"); !bytes.Equal(got, jpegBytes) {
		t.Errorf("position 2 = %v", got)
	}
}

func TestBuildArchivePool_NotAZip(t *testing.T) {
	if _, err := BuildArchivePool([]byte("definitely not a zip")); err == nil {
		t.Error("expected an error")
	}
}
