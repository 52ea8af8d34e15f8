// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command cspdemo runs small CSP programs on a csp scheduler.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"code.hybscloud.com/csp"
	"code.hybscloud.com/kont"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML scheduler config file")
		demo       = flag.String("demo", "all", "Demo to run: ping, sieve, timeout, all")
		n          = flag.Int("n", 15, "Number of primes for the sieve demo")
		timeout    = flag.Duration("timeout", 20*time.Millisecond, "Timeout for the timeout demo")
	)
	flag.Parse()

	var opts []csp.Option
	if *configPath != "" {
		cfg, err := csp.LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		opts = append(opts, csp.WithConfig(cfg))
	}

	run := func(name string, f func(*csp.Scheduler) (string, error)) {
		if *demo != "all" && *demo != name {
			return
		}
		out, err := f(csp.New(opts...))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %s\n", name, out)
	}
	run("ping", ping)
	run("sieve", func(s *csp.Scheduler) (string, error) {
		primes, err := csp.Run(s, sieve(s, *n))
		return fmt.Sprint(primes), err
	})
	run("timeout", func(s *csp.Scheduler) (string, error) {
		return csp.Run(s, timeoutDemo(s, *timeout))
	})
}

// ping is the two-task rendezvous: a spawned task sends, the original
// task receives.
func ping(s *csp.Scheduler) (string, error) {
	ch := csp.MakeChan[string](s, 0)
	csp.Spawn(s, csp.SendThen(ch, "ping", kont.Pure(struct{}{})))
	return csp.Run(s, csp.RecvBind(ch, func(v string, ok bool) kont.Eff[string] {
		return kont.Pure(fmt.Sprintf("(%q, %t)", v, ok))
	}))
}

// generate sends 2, 3, 4, ... on out until cancelled.
func generate(out *csp.Chan[int]) kont.Eff[struct{}] {
	return csp.Loop(2, func(i int) kont.Eff[kont.Either[int, struct{}]] {
		return csp.SendThen(out, i, kont.Pure(kont.Left[int, struct{}](i+1)))
	})
}

// filter copies the values of in that are not multiples of p to out.
func filter(in, out *csp.Chan[int], p int) kont.Eff[struct{}] {
	return csp.Loop(struct{}{}, func(struct{}) kont.Eff[kont.Either[struct{}, struct{}]] {
		return csp.RecvBind(in, func(v int, ok bool) kont.Eff[kont.Either[struct{}, struct{}]] {
			if !ok {
				return csp.CloseThen(out, kont.Pure(kont.Right[struct{}](struct{}{})))
			}
			if v%p == 0 {
				return kont.Pure(kont.Left[struct{}, struct{}](struct{}{}))
			}
			return csp.SendThen(out, v, kont.Pure(kont.Left[struct{}, struct{}](struct{}{})))
		})
	})
}

type sieveState struct {
	in     *csp.Chan[int]
	primes []int
}

// sieve returns the first n primes, chaining one filter task per prime.
func sieve(s *csp.Scheduler, n int) kont.Eff[[]int] {
	src := csp.MakeChan[int](s, 0)
	return csp.GoThen(generate(src), csp.Loop(sieveState{in: src}, func(st sieveState) kont.Eff[kont.Either[sieveState, []int]] {
		if len(st.primes) == n {
			return kont.Pure(kont.Right[sieveState](st.primes))
		}
		return csp.RecvBind(st.in, func(p int, _ bool) kont.Eff[kont.Either[sieveState, []int]] {
			out := csp.MakeChan[int](s, 0)
			next := sieveState{in: out, primes: append(st.primes, p)}
			return csp.GoThen(filter(st.in, out, p), kont.Pure(kont.Left[sieveState, []int](next)))
		})
	}))
}

// timeoutDemo waits on a channel nobody sends to, bounded by d.
func timeoutDemo(s *csp.Scheduler, d time.Duration) kont.Eff[string] {
	never := csp.MakeChan[int](s, 0)
	deadline := csp.After(s, d)
	cases := []csp.Case{csp.RecvCase(never), csp.RecvCase(deadline)}
	return csp.SelectBind(cases, false, func(sel csp.Selected) kont.Eff[string] {
		if sel.Index == 1 {
			return kont.Pure("timed out after " + d.String())
		}
		return kont.Pure(fmt.Sprintf("received %d", csp.ValueOf[int](sel)))
	})
}
