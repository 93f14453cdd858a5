package diskvec

import "fmt"

// QueryBuilder provides a fluent interface for building vector searches.
type QueryBuilder struct {
	index  *Index
	vector []float32
	limit  int
	beam   int
	filter FilterFunc
}

// Query starts a search for the given vector.
func (ix *Index) Query(vector []float32) *QueryBuilder {
	v := make([]float32, len(vector))
	copy(v, vector)
	return &QueryBuilder{index: ix, vector: v, limit: 10}
}

// Limit sets the number of results to return.
func (qb *QueryBuilder) Limit(k int) *QueryBuilder {
	qb.limit = k
	return qb
}

// Filter constrains results to rows the predicate accepts.
func (qb *QueryBuilder) Filter(f FilterFunc) *QueryBuilder {
	qb.filter = f
	return qb
}

// Beam overrides the traversal beam width for this call only. A per-call
// beam takes precedence over the width stored in the index metadata.
func (qb *QueryBuilder) Beam(n int) *QueryBuilder {
	qb.beam = n
	return qb
}

// Execute runs the search.
func (qb *QueryBuilder) Execute() ([]Result, error) {
	if qb.limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalid)
	}
	return qb.index.searchBeam(qb.vector, qb.limit, qb.beam, qb.filter)
}
