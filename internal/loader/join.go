package loader

import (
	"fmt"

	"disasterresponse/internal/table"
	"disasterresponse/pkg/etl"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

type joinStats struct {
	unmatchedLeft  int
	unmatchedRight int
}

// InnerJoin joins left and right on key. Output rows follow left order and,
// for each left row, every matching right row in right order. Output columns
// are the left columns followed by the right columns except key; other names
// present on both sides get "_x" and "_y" suffixes. Null keys never match.
func InnerJoin(left, right *table.Table, key string) (*table.Table, error) {
	out, _, err := innerJoin(left, right, key)
	return out, err
}

func innerJoin(left, right *table.Table, key string) (*table.Table, joinStats, error) {
	lk, ok := left.Column(key)
	if !ok {
		return nil, joinStats{}, fmt.Errorf("%w: left side has no %q column", etl.ErrSchema, key)
	}
	rk, ok := right.Column(key)
	if !ok {
		return nil, joinStats{}, fmt.Errorf("%w: right side has no %q column", etl.ErrSchema, key)
	}
	if lk.Kind != rk.Kind {
		return nil, joinStats{}, fmt.Errorf("%w: cannot join %s %q with %s %q", etl.ErrSchema, lk.Kind, key, rk.Kind, key)
	}

	cols := joinColumns(left, right, key)
	li, ri := left.Index(key), right.Index(key)

	byKey := make(map[string][]int, right.Len())
	for r := 0; r < right.Len(); r++ {
		k, _ := right.Value(r, key)
		if k == "" {
			continue
		}
		byKey[k] = append(byKey[k], r)
	}

	var (
		rows         [][]string
		stats        joinStats
		matchedRight = make(map[int]struct{}, right.Len())
	)
	for l := 0; l < left.Len(); l++ {
		lrow := left.Row(l)
		matches := byKey[lrow[li]]
		if lrow[li] == "" || len(matches) == 0 {
			stats.unmatchedLeft++
			continue
		}
		for _, r := range matches {
			matchedRight[r] = struct{}{}
			rrow := right.Row(r)
			row := make([]string, 0, len(cols))
			row = append(row, lrow...)
			row = append(row, rrow[:ri]...)
			row = append(row, rrow[ri+1:]...)
			rows = append(rows, row)
		}
	}
	stats.unmatchedRight = right.Len() - len(matchedRight)

	out, err := table.New(cols, rows)
	if err != nil {
		return nil, joinStats{}, fmt.Errorf("%w: join: %w", etl.ErrSchema, err)
	}
	return out, stats, nil
}

func joinColumns(left, right *table.Table, key string) []table.Column {
	lcols := left.Columns()
	var rcols []table.Column
	for _, c := range right.Columns() {
		if c.Name != key {
			rcols = append(rcols, c)
		}
	}

	for i := range lcols {
		if lcols[i].Name == key {
			continue
		}
		if right.Index(lcols[i].Name) >= 0 {
			lcols[i].Name += leftSuffix
		}
	}
	for i := range rcols {
		if left.Index(rcols[i].Name) >= 0 {
			rcols[i].Name += rightSuffix
		}
	}
	return append(lcols, rcols...)
}
