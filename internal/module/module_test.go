// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package module

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_UnitNameDefaultsToArtifact(t *testing.T) {
	mod := New("OpenMarketModule", func(m *Builder) error {
		m.Contract("Openmarket")
		return nil
	})

	plan, err := mod.Build(nil)
	require.NoError(t, err)
	require.Len(t, plan.Units, 1)
	assert.Equal(t, "Openmarket", plan.Units[0].Name)
	assert.Equal(t, "Openmarket", plan.Units[0].Artifact)
	assert.Equal(t, KindContract, plan.Units[0].Kind)
	assert.Equal(t, "go", mod.Source())
}

func TestBuild_ReferencesBecomeDependencies(t *testing.T) {
	mod := New("Market", func(m *Builder) error {
		registry := m.ContractAt("Registry", "0x00000000000000000000000000000000000000aa")
		token := m.Contract("Token", Args("Open Token", "OPN"))
		market := m.Contract("Openmarket", ID("nftMarket"), Args(token, 250, token), After(registry))
		m.Output("market", market)
		return nil
	})

	plan, err := mod.Build(nil)
	require.NoError(t, err)

	market, ok := plan.Unit("nftMarket")
	require.True(t, ok)
	assert.Equal(t, []string{"Token", "Registry"}, market.Dependencies())

	want := []Arg{Reference("Token"), Literal(250), Reference("Token")}
	if diff := cmp.Diff(want, market.Args, cmp.AllowUnexported(Arg{})); diff != "" {
		t.Errorf("unexpected args (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Registry", "Token", "nftMarket"}, plan.Names())
	assert.Equal(t, map[string]string{"market": "nftMarket"}, plan.Outputs)
}

func TestBuild_IsLazyAndRepeatable(t *testing.T) {
	calls := 0
	mod := New("Lazy", func(m *Builder) error {
		calls++
		m.Contract("A")
		return nil
	})
	assert.Equal(t, 0, calls, "declaring a module must not run its build function")

	_, err := mod.Build(nil)
	require.NoError(t, err)
	_, err = mod.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBuild_Parameters(t *testing.T) {
	var got []any
	mod := New("Params", func(m *Builder) error {
		got = []any{m.Parameter("fee", 250), m.Parameter("owner")}
		m.Contract("A", Args(got...))
		return nil
	})

	t.Run("supplied values win over defaults", func(t *testing.T) {
		_, err := mod.Build(Parameters{"fee": 100, "owner": "0xabc"})
		require.NoError(t, err)
		assert.Equal(t, []any{100, "0xabc"}, got)
	})

	t.Run("missing required parameter fails the build", func(t *testing.T) {
		_, err := mod.Build(Parameters{"fee": 1})
		var buildErr *BuildError
		require.ErrorAs(t, err, &buildErr)
		assert.Equal(t, "Params", buildErr.Module)
		assert.ErrorContains(t, err, "parameter 'owner' is required")
	})
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		build   BuildFunc
		wantErr string
	}{
		{
			name: "duplicate unit",
			build: func(m *Builder) error {
				m.Contract("A")
				m.Contract("B", ID("A"))
				return nil
			},
			wantErr: "unit 'A' declared more than once",
		},
		{
			name: "empty artifact",
			build: func(m *Builder) error {
				m.Contract("", ID("x"))
				return nil
			},
			wantErr: "unit 'x' has no artifact",
		},
		{
			name: "invalid unit name",
			build: func(m *Builder) error {
				m.Contract("A", ID("not valid"))
				return nil
			},
			wantErr: "must start with a letter",
		},
		{
			name: "unknown reference",
			build: func(m *Builder) error {
				m.Contract("A", Args(m.Ref("ghost")))
				return nil
			},
			wantErr: "unit 'A' refers to undeclared unit 'ghost'",
		},
		{
			name: "contract_at without address",
			build: func(m *Builder) error {
				m.ContractAt("Registry", "")
				return nil
			},
			wantErr: "requires an address",
		},
		{
			name: "output to unknown unit",
			build: func(m *Builder) error {
				m.Output("x", m.Ref("ghost"))
				return nil
			},
			wantErr: "output 'x' refers to undeclared unit 'ghost'",
		},
		{
			name: "build function error",
			build: func(m *Builder) error {
				return errors.New("boom")
			},
			wantErr: "boom",
		},
		{
			name:    "nil build function",
			build:   nil,
			wantErr: "module has no build function",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("Broken", tc.build).Build(nil)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestBuild_UnknownReferenceIsTyped(t *testing.T) {
	_, err := New("M", func(m *Builder) error {
		m.Contract("A", After(m.Ref("B")))
		return nil
	}).Build(nil)

	var unknown *UnknownUnitError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "A", unknown.Unit)
	assert.Equal(t, "B", unknown.Referenced)
}

func TestBuild_ForeignFutureIsRejected(t *testing.T) {
	var foreign *Future
	_, err := New("Other", func(m *Builder) error {
		foreign = m.Contract("X")
		return nil
	}).Build(nil)
	require.NoError(t, err)

	_, err = New("M", func(m *Builder) error {
		m.Contract("A", Args(foreign))
		return nil
	}).Build(nil)
	assert.ErrorContains(t, err, "belongs to module 'Other'")
}
