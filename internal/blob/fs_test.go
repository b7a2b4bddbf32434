package blob

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	ctx := context.Background()

	info, err := store.Put(ctx, "attachments/gel.png", bytes.NewBufferString("img"), PutOptions{ContentType: "image/png"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ETag == "" {
		t.Fatalf("expected content hash etag")
	}
	if _, err := store.Put(ctx, "attachments/gel.png", bytes.NewBufferString("x"), PutOptions{}); err == nil {
		t.Fatalf("put must be create-only")
	}

	head, err := store.Head(ctx, "attachments/gel.png")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if head.Size != 3 || head.ContentType != "image/png" || head.ETag != info.ETag {
		t.Fatalf("head mismatch: %+v", head)
	}

	got, r, err := store.Get(ctx, "attachments/gel.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	_ = r.Close()
	if string(data) != "img" || got.Size != 3 {
		t.Fatalf("round trip mismatch: %s %+v", data, got)
	}

	infos, err := store.List(ctx, "attachments/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "attachments/gel.png" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	ok, err := store.Delete(ctx, "attachments/gel.png")
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = store.Delete(ctx, "attachments/gel.png")
	if err != nil || ok {
		t.Fatalf("second delete should report absence")
	}
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "/absolute"} {
		if _, err := store.Put(ctx, key, bytes.NewBufferString("x"), PutOptions{}); err == nil {
			t.Fatalf("expected rejection for key %q", key)
		}
	}
}

func TestFilesystemStorePresign(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	url, err := store.PresignURL(context.Background(), "k1", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "local.blob") {
		t.Fatalf("unexpected url %s", url)
	}
	if _, err := store.PresignURL(context.Background(), "k1", SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("only GET should be supported")
	}
}

func TestFilesystemStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "blobdata")
	if _, err := NewFilesystem(root); err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root not created: %v", err)
	}
}
