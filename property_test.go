// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"slices"
	"testing"
	"testing/quick"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
)

// sendAll sends every element of payload on c, then closes it.
func sendAll(c *csp.Chan[int], payload []int) kont.Eff[struct{}] {
	return csp.Loop(payload, func(rest []int) kont.Eff[kont.Either[[]int, struct{}]] {
		if len(rest) == 0 {
			return csp.CloseThen(c, kont.Pure(kont.Right[[]int](struct{}{})))
		}
		return csp.SendThen(c, rest[0], kont.Pure(kont.Left[[]int, struct{}](rest[1:])))
	})
}

// TestPropertyChannelFIFO checks that any payload crosses a channel of any
// capacity in order, without loss or duplication.
func TestPropertyChannelFIFO(t *testing.T) {
	property := func(payload []int, capacity uint8) bool {
		s := newScheduler()
		ch := csp.MakeChan[int](s, int(capacity%8))
		csp.Spawn(s, sendAll(ch, payload))
		got, err := csp.Run(s, drain(ch))
		if err != nil {
			return false
		}
		if len(payload) == 0 {
			return len(got) == 0
		}
		return slices.Equal(got, payload)
	}
	if err := quick.Check(property, nil); err != nil {
		t.Fatal(err)
	}
}

// TestPropertyBufferBound checks that a sender with no receiver completes
// exactly min(k, cap) sends and then parks.
func TestPropertyBufferBound(t *testing.T) {
	property := func(k, capacity uint8) bool {
		n, c := int(k%16), int(capacity%8)
		s := newScheduler()
		ch := csp.MakeChan[int](s, c)
		sent := 0
		csp.Spawn(s, sendN(ch, n, &sent))
		err := s.Drive()
		want := min(n, c)
		if sent != want || ch.Len() != want {
			return false
		}
		return (err != nil) == (n > c)
	}
	if err := quick.Check(property, nil); err != nil {
		t.Fatal(err)
	}
}

// TestPropertyManySenders checks that values from several senders on one
// channel are each received exactly once.
func TestPropertyManySenders(t *testing.T) {
	property := func(values []int16, capacity uint8) bool {
		s := newScheduler()
		ch := csp.MakeChan[int](s, int(capacity%4))
		for _, v := range values {
			csp.Spawn(s, csp.SendThen(ch, int(v), unit))
		}
		got, err := csp.Run(s, csp.Loop([]int(nil), func(acc []int) kont.Eff[kont.Either[[]int, []int]] {
			if len(acc) == len(values) {
				return kont.Pure(kont.Right[[]int](acc))
			}
			return csp.RecvBind(ch, func(v int, _ bool) kont.Eff[kont.Either[[]int, []int]] {
				return kont.Pure(kont.Left[[]int, []int](append(acc, v)))
			})
		}))
		if err != nil {
			return false
		}
		want := make([]int, len(values))
		for i, v := range values {
			want[i] = int(v)
		}
		slices.Sort(want)
		slices.Sort(got)
		return slices.Equal(got, want)
	}
	if err := quick.Check(property, nil); err != nil {
		t.Fatal(err)
	}
}
