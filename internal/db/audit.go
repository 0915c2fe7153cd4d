package db

import (
	"context"
	"fmt"
)

// auditTables are the tables the audit exporter snapshots, in export order.
var auditTables = []string{
	"stores",
	"store_operating_hours",
	"availability_overrides",
	"status_logs",
}

// GetTableNames returns the fixed audit table list.
func (db *DB) GetTableNames(ctx context.Context) ([]string, error) {
	names := make([]string, len(auditTables))
	copy(names, auditTables)
	return names, nil
}

// GetTableData reads every row of an audit table into column-keyed maps.
// Only tables from the audit list are accepted; the name is never
// interpolated from user input.
func (db *DB) GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, []string, error) {
	allowed := false
	for _, t := range auditTables {
		if t == tableName {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, nil, fmt.Errorf("table %q is not exported", tableName)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", tableName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("scan %s: %w", tableName, err)
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	return result, columns, rows.Err()
}
