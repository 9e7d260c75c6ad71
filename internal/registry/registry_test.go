// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/deploygridgo/internal/ctxlog"
	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(m *module.Builder) error {
	m.Contract("Openmarket")
	return nil
}

func TestDefine(t *testing.T) {
	r := New()

	m, err := r.Define("OpenMarketModule", noop)
	require.NoError(t, err)
	assert.Equal(t, "OpenMarketModule", m.Name())

	got, ok := r.Lookup("OpenMarketModule")
	require.True(t, ok)
	assert.Same(t, m, got)

	_, ok = r.Lookup("Missing")
	assert.False(t, ok)
}

func TestDefine_DuplicateName(t *testing.T) {
	r := New()
	_, err := r.Define("OpenMarketModule", noop)
	require.NoError(t, err)

	_, err = r.Define("OpenMarketModule", noop)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "OpenMarketModule", dup.Name)
	assert.Equal(t, 1, r.Len())
}

func TestDefine_Validation(t *testing.T) {
	r := New()

	_, err := r.Define("", noop)
	assert.ErrorContains(t, err, "invalid module name")

	_, err = r.Define("Market", nil)
	assert.ErrorContains(t, err, "has no build function")

	assert.Zero(t, r.Len())
}

func TestDefine_HasNoSideEffects(t *testing.T) {
	called := false
	r := New()
	r.MustDefine("Lazy", func(m *module.Builder) error {
		called = true
		return nil
	})
	assert.False(t, called)
}

func TestMustDefine_PanicsOnDuplicate(t *testing.T) {
	r := New()
	r.MustDefine("A", noop)
	assert.Panics(t, func() { r.MustDefine("A", noop) })
}

func TestNames_AreSorted(t *testing.T) {
	r := New()
	r.MustDefine("b", noop)
	r.MustDefine("a", noop)
	r.MustDefine("c", noop)
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
}

func TestLoadDir(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "market.hcl"), []byte(`
module "OpenMarketModule" {
  contract "nftMarket" {
    artifact = "Openmarket"
  }
}
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "token.hcl"), []byte(`
module "TokenModule" {
  contract "Token" {
    artifact = "Token"
  }
}
`), 0600))

	r := New()
	require.NoError(t, r.LoadDir(ctx, dir))
	assert.Equal(t, []string{"OpenMarketModule", "TokenModule"}, r.Names())

	m, ok := r.Lookup("OpenMarketModule")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "market.hcl"), m.Source())
}

func TestLoadDir_DuplicateAcrossGoAndFiles(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "market.hcl"), []byte(`
module "OpenMarketModule" {
  contract "nftMarket" {
    artifact = "Openmarket"
  }
}
`), 0600))

	r := New()
	r.MustDefine("OpenMarketModule", noop)

	err := r.LoadDir(ctx, dir)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "go", dup.Existing)
}

func TestLoadDir_MissingPath(t *testing.T) {
	ctx := ctxlog.Discard(context.Background())
	err := New().LoadDir(ctx, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
