// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp_test

import (
	"io"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
	"github.com/sirupsen/logrus"
)

// do runs f when the task body reaches it and continues with f's result.
func do[A any](f func() A) kont.Eff[A] {
	return kont.Bind(kont.Pure(struct{}{}), func(struct{}) kont.Eff[A] {
		return kont.Pure(f())
	})
}

// note appends msg to log when the task body reaches it.
func note(log *[]string, msg string) kont.Eff[struct{}] {
	return do(func() struct{} {
		*log = append(*log, msg)
		return struct{}{}
	})
}

var unit = kont.Pure(struct{}{})

func silent() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newScheduler returns a seeded scheduler with a silent logger.
// Later options override the defaults.
func newScheduler(opts ...csp.Option) *csp.Scheduler {
	return csp.New(append([]csp.Option{csp.WithLogger(silent()), csp.WithSeed(1)}, opts...)...)
}
