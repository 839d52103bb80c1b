package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetJSONMiss(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer fc.Close()

	var out map[string]int
	if err := GetJSON(ctx, fc, "absent", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(absent) = %v, want ErrCacheMiss", err)
	}

	// A stored value that does not decode into the target also reads as a miss.
	if err := fc.Set(ctx, "garbage", []byte("not json"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, fc, "garbage", &out); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(garbage) = %v, want ErrCacheMiss", err)
	}
}

func TestSetJSONGetJSONRoundtrip(t *testing.T) {
	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer fc.Close()

	in := map[string]int{"nodes": 5, "edges": 1}
	size, err := SetJSON(ctx, fc, "counts", in, time.Hour)
	if err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if size <= 0 {
		t.Errorf("SetJSON size = %d, want positive", size)
	}

	var out map[string]int
	if err := GetJSON(ctx, fc, "counts", &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out["nodes"] != 5 || out["edges"] != 1 {
		t.Errorf("roundtrip = %v, want %v", out, in)
	}
}
