package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

func TestCreateThenValidate(t *testing.T) {
	dir := t.TempDir()
	logg := logger.New(logger.Options{ServiceName: "migrate", Output: &bytes.Buffer{}})

	root := newRootCmd(logg)
	root.SetArgs([]string{"create", "--dir", dir, "add", "goods", "sku"})
	if err := root.Execute(); err != nil {
		t.Fatalf("create: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "*_add_goods_sku.sql"))
	if len(matches) != 1 {
		t.Fatalf("expected one migration file, got %v", matches)
	}

	root = newRootCmd(logg)
	root.SetArgs([]string{"validate", "--dir", dir})
	if err := root.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateFailsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "oops.sql"), []byte("-- +goose Up\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	root := newRootCmd(logger.New(logger.Options{ServiceName: "migrate", Output: &bytes.Buffer{}}))
	root.SetArgs([]string{"validate", "--dir", dir})
	if err := root.Execute(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestToRequiresVersion(t *testing.T) {
	root := newRootCmd(logger.New(logger.Options{ServiceName: "migrate", Output: &bytes.Buffer{}}))
	root.SetArgs([]string{"to"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected missing version to fail")
	}
}
