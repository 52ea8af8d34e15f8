// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"strconv"
	"testing"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricValue returns the value of the series name on reg whose labels
// include want.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("no series %s%v", name, want)
	return 0
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newScheduler(csp.WithRegisterer(reg))
	sched := map[string]string{"scheduler": strconv.FormatUint(uint64(s.Serial()), 10)}

	ch := csp.MakeChan[int](s, 0)
	csp.Spawn(s, csp.SendThen(ch, 1, unit))
	csp.Spawn(s, csp.RecvBind(ch, func(int, bool) kont.Eff[struct{}] { return unit }))
	require.NoError(t, s.Drive())

	assert.Equal(t, 2.0, metricValue(t, reg, "csp_tasks_spawned_total", sched))
	assert.Equal(t, 3.0, metricValue(t, reg, "csp_task_segments_total", sched))
	assert.Equal(t, 0.0, metricValue(t, reg, "csp_tasks_blocked", sched))
	assert.Equal(t, 1.0, metricValue(t, reg, "csp_channel_parks_total", map[string]string{
		"scheduler": sched["scheduler"], "op": "send",
	}))

	csp.Spawn(s, csp.RecvBind(ch, func(int, bool) kont.Eff[struct{}] { return unit }))
	assert.ErrorIs(t, s.Drive(), csp.ErrDeadlock)
	assert.Equal(t, 1.0, metricValue(t, reg, "csp_deadlocks_total", sched))
	assert.Equal(t, 1.0, metricValue(t, reg, "csp_tasks_blocked", sched))
}

func TestMetricsSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newScheduler(csp.WithRegisterer(reg))
	b := newScheduler(csp.WithRegisterer(reg))
	csp.Spawn(a, unit)
	require.NoError(t, a.Drive())
	require.NoError(t, b.Drive())
	label := func(s *csp.Scheduler) map[string]string {
		return map[string]string{"scheduler": strconv.FormatUint(uint64(s.Serial()), 10)}
	}
	assert.Equal(t, 1.0, metricValue(t, reg, "csp_tasks_spawned_total", label(a)))
	assert.Equal(t, 0.0, metricValue(t, reg, "csp_tasks_spawned_total", label(b)))
}
