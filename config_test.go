// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"os"
	"path/filepath"
	"testing"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
name = "sieve"
seed = 42
log_level = "debug"
`

func TestLoadConfig(t *testing.T) {
	cfg, err := csp.LoadConfig([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, csp.Config{Name: "sieve", Seed: 42, LogLevel: "debug"}, cfg)
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := csp.LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, csp.Config{}, cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := csp.LoadConfig([]byte(`log_level = "loud"`))
	assert.Error(t, err)
	_, err = csp.LoadConfig([]byte(`seed = "forty-two"`))
	assert.Error(t, err)
	_, err = csp.LoadConfig([]byte(`name = `))
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csp.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))
	cfg, err := csp.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sieve", cfg.Name)

	_, err = csp.LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

// choices records which of two always-ready cases each of n selects picked.
func choices(t *testing.T, s *csp.Scheduler, n int) []int {
	t.Helper()
	a := csp.MakeChan[int](s, 1)
	b := csp.MakeChan[int](s, 1)
	require.NoError(t, a.TrySend(0))
	require.NoError(t, b.TrySend(1))
	chans := []*csp.Chan[int]{a, b}
	cases := []csp.Case{csp.RecvCase(a), csp.RecvCase(b)}
	var picked []int
	_, err := csp.Run(s, csp.Loop(0, func(i int) kont.Eff[kont.Either[int, struct{}]] {
		if i == n {
			return kont.Pure(kont.Right[int](struct{}{}))
		}
		return csp.SelectBind(cases, false, func(sel csp.Selected) kont.Eff[kont.Either[int, struct{}]] {
			picked = append(picked, sel.Index)
			_ = chans[sel.Index].TrySend(sel.Index)
			return kont.Pure(kont.Left[int, struct{}](i + 1))
		})
	}))
	require.NoError(t, err)
	return picked
}

func TestConfigSeedReproducible(t *testing.T) {
	cfg := csp.Config{Name: "repro", Seed: 7}
	first := choices(t, csp.New(csp.WithConfig(cfg), csp.WithLogger(silent())), 64)
	second := choices(t, csp.New(csp.WithConfig(cfg), csp.WithLogger(silent())), 64)
	assert.Equal(t, first, second)
	assert.Contains(t, first, 0)
	assert.Contains(t, first, 1)
}
