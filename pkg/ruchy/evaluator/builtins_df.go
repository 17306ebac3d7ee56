package evaluator

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

func init() {
	// df_from_sql runs a query against a SQLite database and loads the
	// result set as a DataFrame. Also reachable as DataFrame::from_sql.
	registerBuiltin("df_from_sql", dfFromSQL)
	registerBuiltin("DataFrame::from_sql", dfFromSQL)

	registerBuiltin("df_from_csv", dfFromCSV)
	registerBuiltin("DataFrame::from_csv", dfFromCSV)
}

func dfFromSQL(in *Interp, args ...Object) Object {
	if ctl := builtinArity("df_from_sql", 2, args); ctl != nil {
		return ctl
	}
	path, ok1 := args[0].(*String)
	query, ok2 := args[1].(*String)
	if !ok1 || !ok2 {
		return newError("OP-0004", map[string]any{
			"From": string(args[0].Type()), "To": "String",
		})
	}

	db, err := sql.Open("sqlite", path.Value)
	if err != nil {
		return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
	}
	defer db.Close()

	rows, err := db.Query(query.Value)
	if err != nil {
		return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
	}

	df := &DataFrame{Columns: make([]*DataFrameColumn, len(names))}
	for i, name := range names {
		df.Columns[i] = &DataFrameColumn{Name: name}
	}

	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
		}
		for i, cell := range cells {
			df.Columns[i].Values = append(df.Columns[i].Values, sqlValueToObject(cell))
		}
	}
	if err := rows.Err(); err != nil {
		return newError("IO-0001", map[string]any{"Path": path.Value, "Cause": err.Error()})
	}
	return df
}

func sqlValueToObject(cell any) Object {
	switch v := cell.(type) {
	case nil:
		return NULL
	case int64:
		return &Integer{Value: v}
	case float64:
		return &Float{Value: v}
	case bool:
		return nativeBool(v)
	case string:
		return &String{Value: v}
	case []byte:
		return &String{Value: string(v)}
	case time.Time:
		return &Integer{Value: v.UnixMilli()}
	}
	return &String{Value: fmt.Sprint(cell)}
}

func dfFromCSV(in *Interp, args ...Object) Object {
	if ctl := builtinArity("df_from_csv", 1, args); ctl != nil {
		return ctl
	}
	text, ok := args[0].(*String)
	if !ok {
		return newError("OP-0004", map[string]any{
			"From": string(args[0].Type()), "To": "String",
		})
	}

	records, err := csv.NewReader(strings.NewReader(text.Value)).ReadAll()
	if err != nil {
		return newError("IO-0001", map[string]any{"Path": "csv", "Cause": err.Error()})
	}
	if len(records) == 0 {
		return &DataFrame{}
	}

	header := records[0]
	df := &DataFrame{Columns: make([]*DataFrameColumn, len(header))}
	for i, name := range header {
		df.Columns[i] = &DataFrameColumn{Name: name}
	}
	for _, row := range records[1:] {
		for i := range header {
			if i >= len(row) {
				df.Columns[i].Values = append(df.Columns[i].Values, NULL)
				continue
			}
			df.Columns[i].Values = append(df.Columns[i].Values, csvCell(row[i]))
		}
	}
	return df
}

// csvCell infers the narrowest type for a CSV field.
func csvCell(field string) Object {
	trimmed := strings.TrimSpace(field)
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return &Integer{Value: i}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return &Float{Value: f}
	}
	switch trimmed {
	case "true":
		return TRUE
	case "false":
		return FALSE
	}
	return &String{Value: field}
}
