package network

import (
	"context"

	"github.com/Veraticus/grantflow/internal/model"
	"golang.org/x/sync/errgroup"
)

// ExpandAll runs one Expand per query against the shared lookup, at most
// limit at a time (limit <= 0 means unbounded). Results are returned in query
// order. The first error cancels queries that have not started yet.
func ExpandAll(ctx context.Context, l Lookup, queries []model.Query, limit int) ([]*model.ResultGraph, error) {
	results := make([]*model.ResultGraph, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			graph, err := Expand(l, q)
			if err != nil {
				return err
			}
			results[i] = graph
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
