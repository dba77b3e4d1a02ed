package akron

import (
	"context"
	"errors"

	"github.com/Akash-nath29/akron/internal/database"
	"github.com/Akash-nath29/akron/internal/statement"
)

// BulkInsert inserts rows atomically and returns their generated ids in
// input order. Every row is validated before anything is executed; a failing
// row is reported as a MutationError carrying its index, and no row is kept.
func (o ops) BulkInsert(ctx context.Context, table string, rows []map[string]any) ([]int64, error) {
	t, err := o.table(table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []int64{}, nil
	}

	stmts := make([]statement.Statement, len(rows))
	for i, values := range rows {
		stmt, err := o.db.builder.Insert(t, values)
		if err != nil {
			return nil, mutationFailed(table, i, err)
		}
		stmts[i] = stmt
	}

	results, err := o.run.ExecBatch(ctx, stmts)
	if err != nil {
		var batchErr *database.BatchError
		if errors.As(err, &batchErr) {
			return nil, mutationFailed(table, batchErr.Index, batchErr.Err)
		}
		return nil, mutationFailed(table, -1, err)
	}

	ids := make([]int64, len(results))
	for i, res := range results {
		ids[i] = res.LastInsertID
	}
	o.db.log.Debug().Str("table", table).Int("rows", len(ids)).Msg("Bulk insert complete")
	return ids, nil
}
