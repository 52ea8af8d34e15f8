// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are always collected; they are exported only when a registerer
// is configured. The scheduler label keeps instances on one registry apart.
type metrics struct {
	spawned   prometheus.Counter
	segments  prometheus.Counter
	blocked   prometheus.Gauge
	parks     *prometheus.CounterVec
	deadlocks prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, serial Serial) *metrics {
	labels := prometheus.Labels{"scheduler": strconv.FormatUint(uint64(serial), 10)}
	m := &metrics{
		spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "csp",
			Name:        "tasks_spawned_total",
			Help:        "Tasks created by spawn.",
			ConstLabels: labels,
		}),
		segments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "csp",
			Name:        "task_segments_total",
			Help:        "Task segments run between suspension points.",
			ConstLabels: labels,
		}),
		blocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "csp",
			Name:        "tasks_blocked",
			Help:        "Tasks currently parked on channel wait queues.",
			ConstLabels: labels,
		}),
		parks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "csp",
			Name:        "channel_parks_total",
			Help:        "Channel operations that parked their task.",
			ConstLabels: labels,
		}, []string{"op"}),
		deadlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "csp",
			Name:        "deadlocks_total",
			Help:        "Drive calls that ended in deadlock.",
			ConstLabels: labels,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.spawned, m.segments, m.blocked, m.parks, m.deadlocks)
	}
	return m
}
