package grid

import "gonum.org/v1/gonum/stat/combin"

// Pairs enumerates the unordered index pairs (i, j), i < j, of n items in
// ascending lexicographic order: (0,1), (0,2), .., (1,2), ..
func Pairs(n int) [][2]int {
	if n < 2 {
		return nil
	}
	combs := combin.Combinations(n, 2)
	pairs := make([][2]int, len(combs))
	for k, c := range combs {
		pairs[k] = [2]int{c[0], c[1]}
	}
	return pairs
}

// NumPairs returns C(n, 2).
func NumPairs(n int) int {
	if n < 2 {
		return 0
	}
	return combin.Binomial(n, 2)
}
