//go:build !parallel

// Package accel provides a build-tag-selectable backend for the
// read-only candidate-combination checks Infer runs before mutating
// the hypergraph: Filter evaluates a predicate over every combination
// index and reports which passed. The default backend is sequential
// and always correct; building with the "parallel" tag swaps in a
// worker-pool backend for large rule fan-outs.
package accel

// FilterFunc reports whether candidate i passes, or an error if the
// check itself failed.
type FilterFunc func(i int) (bool, error)

// Filter evaluates check for every index in [0, n) and returns the
// passing indices in ascending order.
func Filter(n int, check FilterFunc) ([]int, error) {
	var passed []int
	for i := 0; i < n; i++ {
		ok, err := check(i)
		if err != nil {
			return nil, err
		}
		if ok {
			passed = append(passed, i)
		}
	}
	return passed, nil
}
