package strategy

// MaxSobolDimensions is the number of dimensions the embedded direction
// table supports. Parameter studies rarely vary more than a handful of
// dimensions; a schema beyond this limit fails with DIMENSION_LIMIT.
const MaxSobolDimensions = 20

// sobolEntry holds one dimension's primitive-polynomial coefficients (a)
// and initial direction values (m). The polynomial degree is len(m).
type sobolEntry struct {
	a uint32
	m []uint32
}

// sobolDirections are the Joe-Kuo direction numbers for dimensions 2..20.
// Dimension 1 (van der Corput) is constructed directly.
var sobolDirections = []sobolEntry{
	{a: 0, m: []uint32{1}},
	{a: 1, m: []uint32{1, 3}},
	{a: 1, m: []uint32{1, 3, 1}},
	{a: 2, m: []uint32{1, 1, 1}},
	{a: 1, m: []uint32{1, 1, 3, 3}},
	{a: 4, m: []uint32{1, 3, 5, 13}},
	{a: 2, m: []uint32{1, 1, 5, 5, 17}},
	{a: 4, m: []uint32{1, 1, 5, 5, 5}},
	{a: 7, m: []uint32{1, 1, 7, 11, 19}},
	{a: 11, m: []uint32{1, 1, 5, 1, 1}},
	{a: 13, m: []uint32{1, 1, 1, 3, 11}},
	{a: 14, m: []uint32{1, 3, 5, 5, 31}},
	{a: 1, m: []uint32{1, 3, 3, 9, 7, 49}},
	{a: 13, m: []uint32{1, 1, 1, 15, 21, 21}},
	{a: 16, m: []uint32{1, 3, 1, 13, 27, 49}},
	{a: 19, m: []uint32{1, 1, 1, 15, 7, 5}},
	{a: 22, m: []uint32{1, 3, 1, 3, 25, 1}},
	{a: 25, m: []uint32{1, 1, 5, 5, 19, 61}},
	{a: 1, m: []uint32{1, 3, 7, 11, 41, 79, 119}},
}
