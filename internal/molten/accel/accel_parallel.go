//go:build parallel

package accel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Filter evaluates check across a bounded worker pool sized to
// GOMAXPROCS, for rule tables whose Independent combination fan-out
// is large enough that the sequential backend's DFS checks dominate
// Infer's wall clock. Results are collected in ascending index order
// regardless of completion order, matching the sequential backend's
// output exactly.
func Filter(n int, check FilterFunc) ([]int, error) {
	results := make([]bool, n)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			ok, err := check(i)
			if err != nil {
				return err
			}
			results[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var passed []int
	for i, ok := range results {
		if ok {
			passed = append(passed, i)
		}
	}
	return passed, nil
}
