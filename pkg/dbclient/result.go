package dbclient

import "database/sql"

// Result carries the outcome of a Query. Columns preserve the backend's
// column order; Rows preserve result order. RowCount equals len(Rows)
// for reads; Execute reports affected counts separately.
type Result struct {
	Columns  []string
	Rows     []Row
	RowCount int64
}

// First returns the first row, if any.
func (r *Result) First() (Row, bool) {
	if len(r.Rows) == 0 {
		return nil, false
	}
	return r.Rows[0], true
}

// Empty reports whether the result has no rows.
func (r *Result) Empty() bool { return len(r.Rows) == 0 }

// collectRows drains rows into a Result. Byte-slice cells (how most
// drivers return text) are normalized to string.
func collectRows(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res.RowCount = int64(len(res.Rows))
	return res, nil
}
