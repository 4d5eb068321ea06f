package snapshot

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpen_File(t *testing.T) {
	for _, backend := range []string{"", "file", "FILE"} {
		store, err := Open(context.Background(), Options{Backend: backend, Path: filepath.Join(t.TempDir(), "s.json")})
		if err != nil {
			t.Fatalf("Open(%q) error: %v", backend, err)
		}
		if _, ok := store.(*FileStore); !ok {
			t.Errorf("Open(%q) = %T, want *FileStore", backend, store)
		}
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "unknown backend", opts: Options{Backend: "s3"}},
		{name: "file without path", opts: Options{Backend: "file"}},
		{name: "bad redis url", opts: Options{Backend: "redis", RedisURL: "redis://cache:notaport"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(context.Background(), tt.opts); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		url      string
		wantAddr string
		wantDB   int
	}{
		{url: "", wantAddr: "localhost:6379"},
		{url: "cache:6380", wantAddr: "cache:6380"},
		{url: "redis://cache:6381/2", wantAddr: "cache:6381", wantDB: 2},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			opts, err := redisOptions(tt.url)
			if err != nil {
				t.Fatalf("redisOptions() error: %v", err)
			}
			if opts.Addr != tt.wantAddr || opts.DB != tt.wantDB {
				t.Errorf("Addr=%q DB=%d, want %q %d", opts.Addr, opts.DB, tt.wantAddr, tt.wantDB)
			}
		})
	}
}
