// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/deploygridgo/internal/backend"
	"github.com/specialistvlad/deploygridgo/internal/results"
	"github.com/specialistvlad/deploygridgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenModuleHCL = `
module "TokenModule" {
  parameter "symbol" {}
  parameter "supply" { default = 1000 }

  contract "token" {
    artifact = "Token"
    args     = [param.symbol, param.supply]
  }

  contract "vault" {
    artifact = "Vault"
    args     = [unit.token]
  }

  output "token" { value = unit.token }
}
`

func newTestApp(t *testing.T, cfg Config, opts ...Option) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()
	config, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	logs := &testutil.SafeBuffer{}
	opts = append([]Option{WithLogOutput(logs)}, opts...)
	a, err := NewApp(out, config, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("DEPLOYGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Config{Module: "M"}},
		{name: "bad format", cfg: Config{LogFormat: "xml"}, wantErr: "invalid log format"},
		{name: "bad level", cfg: Config{LogLevel: "loud"}, wantErr: "invalid log level"},
		{name: "negative workers", cfg: Config{WorkerCount: -1}, wantErr: "cannot be negative"},
		{name: "bad port", cfg: Config{HealthcheckPort: 70000}, wantErr: "invalid healthcheck port"},
		{name: "bad deployer", cfg: Config{Deployer: "alice"}, wantErr: "invalid deployer"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "text", cfg.LogFormat)
			assert.Equal(t, "info", cfg.LogLevel)
		})
	}
}

func TestModules_BuiltInAndFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "token.hcl", tokenModuleHCL)

	a, _, _ := newTestApp(t, Config{ModulesPath: dir})
	assert.Equal(t, []ModuleInfo{
		{Name: "OpenMarketModule", Source: "go"},
		{Name: "TokenModule", Source: path},
	}, a.Modules())
}

func TestNewApp_InvalidModuleFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.hcl", `module "Broken" {`)

	cfg, err := NewConfig(Config{ModulesPath: dir})
	require.NoError(t, err)
	_, err = NewApp(io.Discard, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load modules")
}

func TestRun_BuiltInModule(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "deployed_addresses.json")
	a, out, _ := newTestApp(t, Config{Module: "OpenMarketModule", StatePath: statePath})

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	u, ok := res.Get("Openmarket")
	require.True(t, ok)
	assert.Equal(t, backend.Handle("0x5FbDB2315678afecb367f032d93F642f64180aa3"), u.Handle)

	assert.Contains(t, out.String(), "OpenMarketModule#Openmarket")
	assert.Contains(t, out.String(), "succeeded")

	raw, err := os.ReadFile(statePath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"OpenMarketModule#Openmarket": "0x5FbDB2315678afecb367f032d93F642f64180aa3"}`, string(raw))

	// A fresh app against the same state file reuses the recorded address.
	again, out, _ := newTestApp(t, Config{Module: "OpenMarketModule", StatePath: statePath})
	res, err = again.Run(context.Background())
	require.NoError(t, err)
	u, _ = res.Get("Openmarket")
	assert.True(t, u.Reused)
	assert.Contains(t, out.String(), "reused from state")
}

func TestRun_BuiltInModuleRecognisesExistingStateFile(t *testing.T) {
	const recorded = "0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0"
	statePath := writeFile(t, t.TempDir(), "deployed_addresses.json",
		`{"OpenMarketModule#Openmarket": "`+recorded+`"}`)

	a, out, _ := newTestApp(t, Config{Module: "OpenMarketModule", StatePath: statePath})
	res, err := a.Run(context.Background())
	require.NoError(t, err)

	u, ok := res.Get("Openmarket")
	require.True(t, ok)
	assert.True(t, u.Reused)
	assert.Equal(t, backend.Handle(recorded), u.Handle)
	h, ok := res.Output("nftMarket")
	require.True(t, ok)
	assert.Equal(t, backend.Handle(recorded), h)
	assert.Contains(t, out.String(), "reused from state")
}

const marketModuleHCL = `
module "MarketModule" {
  contract "Registry" {}

  contract "Market" {
    after = [unit.Registry]
  }
}
`

const bareArtifact = `{"abi": [], "bytecode": "0x6080"}`

func TestRun_ResumedRunContinuesAfterRecordedAddresses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules/market.hcl", marketModuleHCL)
	artifacts := filepath.Join(dir, "artifacts")
	writeFile(t, artifacts, "Registry.json", bareArtifact)
	cfg := Config{
		ModulesPath:   filepath.Join(dir, "modules"),
		Module:        "MarketModule",
		StatePath:     filepath.Join(dir, "deployed_addresses.json"),
		ArtifactsPath: artifacts,
	}

	// Market has no artifact yet, so only Registry is deployed and recorded.
	first, _, _ := newTestApp(t, cfg)
	res, err := first.Run(context.Background())
	require.Error(t, err)
	registry, _ := res.Get("Registry")
	assert.Equal(t, results.Succeeded, registry.Status)
	assert.Equal(t, backend.Handle("0x5FbDB2315678afecb367f032d93F642f64180aa3"), registry.Handle)
	market, _ := res.Get("Market")
	assert.Equal(t, results.Failed, market.Status)

	writeFile(t, artifacts, "Market.json", bareArtifact)
	second, _, _ := newTestApp(t, cfg)
	res, err = second.Run(context.Background())
	require.NoError(t, err)

	registry, _ = res.Get("Registry")
	assert.True(t, registry.Reused)
	assert.Equal(t, backend.Handle("0x5FbDB2315678afecb367f032d93F642f64180aa3"), registry.Handle)
	market, _ = res.Get("Market")
	assert.False(t, market.Reused)
	assert.Equal(t, backend.Handle("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"), market.Handle)
}

func TestRun_FileModuleWithParameters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules/token.hcl", tokenModuleHCL)
	paramsPath := writeFile(t, dir, "params.yaml", "TokenModule:\n  symbol: OPN\n")

	b := testutil.NewRecordingBackend(nil)
	a, out, _ := newTestApp(t, Config{
		ModulesPath:    filepath.Join(dir, "modules"),
		Module:         "TokenModule",
		ParametersPath: paramsPath,
		WorkerCount:    2,
	}, WithBackend(b))

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Succeeded())

	token, ok := b.Call("Token")
	require.True(t, ok)
	assert.Equal(t, []any{"OPN", int64(1000)}, token.Args)
	vault, ok := b.Call("Vault")
	require.True(t, ok)
	assert.Equal(t, []any{backend.Handle("0xToken")}, vault.Args)

	assert.Contains(t, out.String(), "OUTPUT")
	assert.Contains(t, out.String(), "0xToken")
}

func TestRun_JSONParameters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "token.hcl", tokenModuleHCL)
	paramsPath := writeFile(t, dir, "params.json", `{"TokenModule": {"symbol": "OPN", "supply": 5}}`)

	b := testutil.NewRecordingBackend(nil)
	a, _, _ := newTestApp(t, Config{ModulesPath: dir, Module: "TokenModule", ParametersPath: paramsPath}, WithBackend(b))

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	token, _ := b.Call("Token")
	assert.Equal(t, []any{"OPN", int64(5)}, token.Args)
}

func TestRun_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "token.hcl", tokenModuleHCL)
	paramsPath := writeFile(t, dir, "params.json", `{"TokenModule": {"symbol": "OPN"}}`)

	cause := errors.New("insufficient funds")
	b := testutil.NewRecordingBackend(map[string]error{"Token": cause})
	a, out, _ := newTestApp(t, Config{ModulesPath: dir, Module: "TokenModule", ParametersPath: paramsPath}, WithBackend(b))

	res, err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	require.NotNil(t, res)

	vault, _ := res.Get("vault")
	assert.Equal(t, results.Skipped, vault.Status)
	assert.Contains(t, out.String(), "dependency token did not succeed")
	assert.Contains(t, out.String(), "insufficient funds")
}

func TestRun_ModuleNotFound(t *testing.T) {
	a, _, _ := newTestApp(t, Config{Module: "Nope"})

	_, err := a.Run(context.Background())
	var notFound *ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"OpenMarketModule"}, notFound.Available)
}

func TestHealthMux(t *testing.T) {
	a, _, _ := newTestApp(t, Config{Module: "OpenMarketModule"})
	_, err := a.Run(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(a.healthMux())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "OK\n", string(body))

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `deploygrid_runs_total{module="OpenMarketModule",outcome="succeeded"} 1`)
}

func TestHealthCheckServer_StartAndClose(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	a, _, _ := newTestApp(t, Config{Module: "OpenMarketModule", HealthcheckPort: port})
	ctx, cancel := context.WithCancel(context.Background())
	a.startHealthCheckServer(ctx)

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	// Closing still works once the run's context is gone.
	cancel()
	require.NoError(t, a.closeHealthCheckServer(ctx))
	_, err = http.Get(url)
	assert.Error(t, err)
}
