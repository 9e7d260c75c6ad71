// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package hclmodule

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/deploygridgo/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketHCL = `
module "OpenMarketModule" {
  parameter "fee" {
    default     = 250
    description = "Marketplace fee in basis points."
  }

  parameter "owner" {}

  contract_at "registry" {
    artifact = "Registry"
    address  = "0x00000000000000000000000000000000000000aa"
  }

  contract "token" {
    artifact = "Token"
    args     = ["Open Token", "OPN", param.owner]
  }

  contract "nftMarket" {
    artifact = "Openmarket"
    args     = [unit.token, param.fee, { royalties = true }]
    after    = [unit.registry]
  }

  output "market" {
    value = unit.nftMarket
  }
}
`

func loadOne(t *testing.T, src string) *module.Module {
	t.Helper()
	mods, err := NewLoader().LoadSource([]byte(src), "test.hcl")
	require.NoError(t, err)
	require.Len(t, mods, 1)
	return mods[0]
}

func TestLoadSource_BuildsPlan(t *testing.T) {
	mod := loadOne(t, marketHCL)
	assert.Equal(t, "OpenMarketModule", mod.Name())
	assert.Equal(t, "test.hcl", mod.Source())

	plan, err := mod.Build(module.Parameters{"owner": "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"registry", "token", "nftMarket"}, plan.Names())
	assert.Equal(t, map[string]string{"market": "nftMarket"}, plan.Outputs)

	registry, ok := plan.Unit("registry")
	require.True(t, ok)
	assert.Equal(t, module.KindContractAt, registry.Kind)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", registry.Address)

	token, ok := plan.Unit("token")
	require.True(t, ok)
	wantTokenArgs := []module.Arg{
		module.Literal("Open Token"),
		module.Literal("OPN"),
		module.Literal("0xabc"),
	}
	if diff := cmp.Diff(wantTokenArgs, token.Args, cmp.AllowUnexported(module.Arg{})); diff != "" {
		t.Errorf("unexpected token args (-want +got):\n%s", diff)
	}

	market, ok := plan.Unit("nftMarket")
	require.True(t, ok)
	assert.Equal(t, "Openmarket", market.Artifact)
	assert.Equal(t, []string{"token", "registry"}, market.Dependencies())
	wantMarketArgs := []module.Arg{
		module.Reference("token"),
		module.Literal(int64(250)),
		module.Literal(map[string]any{"royalties": true}),
	}
	if diff := cmp.Diff(wantMarketArgs, market.Args, cmp.AllowUnexported(module.Arg{})); diff != "" {
		t.Errorf("unexpected market args (-want +got):\n%s", diff)
	}
}

func TestLoadSource_ParametersAreEvaluatedPerRun(t *testing.T) {
	mod := loadOne(t, marketHCL)

	first, err := mod.Build(module.Parameters{"owner": "0x1", "fee": 100})
	require.NoError(t, err)
	second, err := mod.Build(module.Parameters{"owner": "0x2"})
	require.NoError(t, err)

	m1, _ := first.Unit("nftMarket")
	m2, _ := second.Unit("nftMarket")
	assert.Equal(t, int64(100), m1.Args[1].Value())
	assert.Equal(t, int64(250), m2.Args[1].Value())
}

func TestLoadSource_MissingRequiredParameter(t *testing.T) {
	mod := loadOne(t, marketHCL)

	_, err := mod.Build(nil)
	require.Error(t, err)
	var buildErr *module.BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Contains(t, err.Error(), "parameter 'owner' is required")
}

func TestLoadSource_ArtifactDefaultsToLabel(t *testing.T) {
	mod := loadOne(t, `
module "OpenMarketModule" {
  contract "Openmarket" {}
}
`)
	plan, err := mod.Build(nil)
	require.NoError(t, err)
	require.Len(t, plan.Units, 1)
	assert.Equal(t, "Openmarket", plan.Units[0].Name)
	assert.Equal(t, "Openmarket", plan.Units[0].Artifact)
}

func TestLoadSource_UnknownReferenceFailsAtBuild(t *testing.T) {
	mod := loadOne(t, `
module "Broken" {
  contract "a" {
    args = [unit.missing]
  }
}
`)
	_, err := mod.Build(nil)
	var unknown *module.UnknownUnitError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "a", unknown.Unit)
	assert.Equal(t, "missing", unknown.Referenced)
}

func TestLoadSource_NestedUnitReferenceIsRejected(t *testing.T) {
	mod := loadOne(t, `
module "Broken" {
  contract "a" {}
  contract "b" {
    args = ["${unit.a}-suffix"]
  }
}
`)
	_, err := mod.Build(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit.a")
}

func TestLoadSource_LargeIntegersKeepPrecision(t *testing.T) {
	mod := loadOne(t, `
module "Supply" {
  contract "token" {
    args = [1000000000000000000000000]
  }
}
`)
	plan, err := mod.Build(nil)
	require.NoError(t, err)

	want, ok := new(big.Int).SetString("1000000000000000000000000", 10)
	require.True(t, ok)
	got, ok := plan.Units[0].Args[0].Value().(*big.Int)
	require.True(t, ok, "expected *big.Int, got %T", plan.Units[0].Args[0].Value())
	assert.Zero(t, want.Cmp(got))
}

func TestLoadSource_StaticErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `module "A" {`,
			wantErr: "failed to parse",
		},
		{
			name: "duplicate unit",
			src: `
module "A" {
  contract "x" {}
  contract "x" {}
}`,
			wantErr: `Duplicate contract "x"`,
		},
		{
			name: "contract and contract_at share names",
			src: `
module "A" {
  contract "x" {}
  contract_at "x" { address = "0x1" }
}`,
			wantErr: "Duplicate unit name",
		},
		{
			name: "contract_at without address",
			src: `
module "A" {
  contract_at "x" {}
}`,
			wantErr: "address",
		},
		{
			name: "args not a list",
			src: `
module "A" {
  contract "x" { args = "nope" }
}`,
			wantErr: "must be a list literal",
		},
		{
			name: "after entry not a unit",
			src: `
module "A" {
  contract "x" { after = ["y"] }
}`,
			wantErr: "Invalid after entry",
		},
		{
			name: "output not a unit",
			src: `
module "A" {
  contract "x" {}
  output "o" { value = "x" }
}`,
			wantErr: "Invalid output value",
		},
		{
			name: "parameter default uses variables",
			src: `
module "A" {
  parameter "p" { default = param.q }
}`,
			wantErr: "must be a constant",
		},
		{
			name: "invalid unit name",
			src: `
module "A" {
  contract "1bad" {}
}`,
			wantErr: "Invalid unit name",
		},
		{
			name: "duplicate module",
			src: `
module "A" {}
module "A" {}
`,
			wantErr: "declared more than once",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().LoadSource([]byte(tc.src), "test.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.hcl")
	require.NoError(t, os.WriteFile(path, []byte(marketHCL), 0o644))

	mods, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, path, mods[0].Source())

	_, err = NewLoader().LoadFile(filepath.Join(dir, "missing.hcl"))
	require.Error(t, err)
}
