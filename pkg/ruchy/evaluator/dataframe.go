package evaluator

import (
	"math"
	"sort"

	"github.com/ruchy-lang/ruchy/pkg/ruchy/ast"
)

func (in *Interp) evalDataFrameLiteral(n *ast.DataFrameLiteral, env *Environment) Object {
	df := &DataFrame{Columns: make([]*DataFrameColumn, 0, len(n.Columns))}
	for _, col := range n.Columns {
		values, errObj := in.evalExpressions(col.Values, env)
		if errObj != nil {
			return errObj
		}
		df.Columns = append(df.Columns, &DataFrameColumn{Name: col.Name, Values: values})
	}
	return df
}

// evalDataFrameOp handles pre-lowered dataframe operations; the same
// dispatch serves method-call syntax.
func (in *Interp) evalDataFrameOp(n *ast.DataFrameOperation, env *Environment) Object {
	receiver := in.evalExpr(n.Receiver, env)
	if isControl(receiver) {
		return receiver
	}
	args, errObj := in.evalExpressions(n.Arguments, env)
	if errObj != nil {
		return errObj
	}
	df, ok := receiver.(*DataFrame)
	if !ok {
		return noMethodError(receiver, n.Op)
	}
	return in.dataFrameMethod(df, n.Op, args)
}

func (in *Interp) dataFrameMethod(df *DataFrame, method string, args []Object) Object {
	switch method {
	case "rows", "count":
		return &Integer{Value: int64(df.Rows())}

	case "columns":
		out := make([]Object, len(df.Columns))
		for i, c := range df.Columns {
			out[i] = &String{Value: c.Name}
		}
		return &Array{Elements: out}

	case "col":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		name, ok := args[0].(*String)
		if !ok {
			return noMethodError(args[0], method)
		}
		col := df.Column(name.Value)
		if col == nil {
			return newError("UNDEF-0002", map[string]any{
				"Field": name.Value, "Type": "DataFrame",
			})
		}
		return &Series{Name: col.Name, Values: col.Values}

	case "select":
		names, errObj := columnNameArgs(args)
		if errObj != nil {
			return errObj
		}
		out := &DataFrame{}
		for _, name := range names {
			col := df.Column(name)
			if col == nil {
				return newError("UNDEF-0002", map[string]any{
					"Field": name, "Type": "DataFrame",
				})
			}
			out.Columns = append(out.Columns, col)
		}
		return out

	case "filter":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		var keep []int
		rows, errObj := iterableElements(df)
		if errObj != nil {
			return errObj
		}
		for i, row := range rows {
			pass := in.applyFunction(args[0], []Object{row})
			if isControl(pass) {
				return pass
			}
			if truthy(pass) {
				keep = append(keep, i)
			}
		}
		return df.takeRows(keep)

	case "sort":
		if len(args) < 1 {
			return methodArity(method, 1, len(args))
		}
		name, ok := args[0].(*String)
		if !ok {
			return noMethodError(args[0], method)
		}
		col := df.Column(name.Value)
		if col == nil {
			return newError("UNDEF-0002", map[string]any{
				"Field": name.Value, "Type": "DataFrame",
			})
		}
		descending := len(args) > 1 && truthy(args[1])
		order := make([]int, df.Rows())
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			cmp := compareObjects(columnValue(col, order[a]), columnValue(col, order[b]))
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
		return df.takeRows(order)

	case "head", "limit":
		n := int64(5)
		if len(args) > 0 {
			num, ok := args[0].(*Integer)
			if !ok {
				return noMethodError(args[0], method)
			}
			n = num.Value
		}
		rows := int64(df.Rows())
		if n > rows {
			n = rows
		}
		keep := make([]int, 0, n)
		for i := int64(0); i < n; i++ {
			keep = append(keep, int(i))
		}
		return df.takeRows(keep)

	case "tail":
		n := int64(5)
		if len(args) > 0 {
			num, ok := args[0].(*Integer)
			if !ok {
				return noMethodError(args[0], method)
			}
			n = num.Value
		}
		rows := int64(df.Rows())
		start := rows - n
		if start < 0 {
			start = 0
		}
		keep := make([]int, 0, rows-start)
		for i := start; i < rows; i++ {
			keep = append(keep, int(i))
		}
		return df.takeRows(keep)

	case "groupby":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		name, ok := args[0].(*String)
		if !ok {
			return noMethodError(args[0], method)
		}
		return in.groupBy(df, name.Value)

	case "agg":
		if len(args) < 1 {
			return methodArity(method, 1, len(args))
		}
		op, ok := args[0].(*String)
		if !ok {
			return noMethodError(args[0], method)
		}
		return aggregateGroups(df, op.Value)

	case "join":
		if len(args) < 2 {
			return methodArity(method, 2, len(args))
		}
		other, ok1 := args[0].(*DataFrame)
		key, ok2 := args[1].(*String)
		if !ok1 || !ok2 {
			return noMethodError(df, method)
		}
		return joinFrames(df, other, key.Value)

	case "to_string":
		return &String{Value: df.Inspect()}
	}
	return noMethodError(df, method)
}

func (in *Interp) seriesMethod(s *Series, method string, args []Object) Object {
	switch method {
	case "count", "len":
		return &Integer{Value: int64(len(s.Values))}
	case "sum":
		return sumObjects(s.Values)
	case "min":
		return extremeObject(s.Values, -1)
	case "max":
		return extremeObject(s.Values, 1)
	case "mean":
		return &Float{Value: seriesMean(s.Values)}
	case "std":
		return &Float{Value: seriesStd(s.Values)}
	case "map":
		if ctl := methodArity(method, 1, len(args)); ctl != nil {
			return ctl
		}
		out := make([]Object, len(s.Values))
		for i, v := range s.Values {
			mapped := in.applyFunction(args[0], []Object{v})
			if isControl(mapped) {
				return mapped
			}
			out[i] = mapped
		}
		return &Series{Name: s.Name, Values: out}
	case "to_list", "collect":
		out := make([]Object, len(s.Values))
		copy(out, s.Values)
		return &Array{Elements: out}
	case "to_string":
		return &String{Value: s.Inspect()}
	}
	return noMethodError(s, method)
}

// takeRows projects the frame onto a row index selection, preserving
// column order.
func (df *DataFrame) takeRows(rows []int) *DataFrame {
	out := &DataFrame{Columns: make([]*DataFrameColumn, len(df.Columns))}
	for i, c := range df.Columns {
		values := make([]Object, 0, len(rows))
		for _, r := range rows {
			values = append(values, columnValue(c, r))
		}
		out.Columns[i] = &DataFrameColumn{Name: c.Name, Values: values}
	}
	return out
}

// columnNameArgs accepts either a single list of column names or the
// names as separate arguments.
func columnNameArgs(args []Object) ([]string, Object) {
	items := args
	if len(args) == 1 {
		if arr, ok := args[0].(*Array); ok {
			items = arr.Elements
		}
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(*String)
		if !ok {
			return nil, newError("OP-0004", map[string]any{
				"From": string(item.Type()), "To": "String",
			})
		}
		names = append(names, s.Value)
	}
	return names, nil
}

func columnValue(c *DataFrameColumn, row int) Object {
	if row < len(c.Values) {
		return c.Values[row]
	}
	return NULL
}

// groupBy buckets rows by a key column: the result has one row per
// distinct key, in first-appearance order, with the other columns holding
// lists of grouped values. agg collapses those lists.
func (in *Interp) groupBy(df *DataFrame, key string) Object {
	keyCol := df.Column(key)
	if keyCol == nil {
		return newError("UNDEF-0002", map[string]any{"Field": key, "Type": "DataFrame"})
	}

	var keys []Object
	groups := make(map[string][]int)
	var order []string
	for i := 0; i < df.Rows(); i++ {
		k := columnValue(keyCol, i)
		repr := inspectQuoted(k)
		if _, seen := groups[repr]; !seen {
			order = append(order, repr)
			keys = append(keys, k)
		}
		groups[repr] = append(groups[repr], i)
	}

	out := &DataFrame{Columns: []*DataFrameColumn{{Name: key, Values: keys}}}
	for _, c := range df.Columns {
		if c.Name == key {
			continue
		}
		values := make([]Object, 0, len(order))
		for _, repr := range order {
			group := make([]Object, 0, len(groups[repr]))
			for _, row := range groups[repr] {
				group = append(group, columnValue(c, row))
			}
			values = append(values, &Array{Elements: group})
		}
		out.Columns = append(out.Columns, &DataFrameColumn{Name: c.Name, Values: values})
	}
	return out
}

// aggregateGroups collapses list-valued cells produced by groupby with the
// named aggregation.
func aggregateGroups(df *DataFrame, op string) Object {
	out := &DataFrame{Columns: make([]*DataFrameColumn, len(df.Columns))}
	for i, c := range df.Columns {
		values := make([]Object, len(c.Values))
		for j, v := range c.Values {
			group, ok := v.(*Array)
			if !ok {
				values[j] = v
				continue
			}
			var agg Object
			switch op {
			case "sum":
				agg = sumObjects(group.Elements)
			case "mean", "avg":
				agg = &Float{Value: seriesMean(group.Elements)}
			case "min":
				agg = extremeObject(group.Elements, -1)
			case "max":
				agg = extremeObject(group.Elements, 1)
			case "count":
				agg = &Integer{Value: int64(len(group.Elements))}
			case "std":
				agg = &Float{Value: seriesStd(group.Elements)}
			default:
				return newError("TYPE-0004", map[string]any{
					"Method": op, "Type": "DataFrame",
				})
			}
			if isError(agg) {
				return agg
			}
			values[j] = agg
		}
		out.Columns[i] = &DataFrameColumn{Name: c.Name, Values: values}
	}
	return out
}

// joinFrames is an inner join on a shared key column.
func joinFrames(left, right *DataFrame, key string) Object {
	leftKey := left.Column(key)
	rightKey := right.Column(key)
	if leftKey == nil || rightKey == nil {
		return newError("UNDEF-0002", map[string]any{"Field": key, "Type": "DataFrame"})
	}

	var leftRows, rightRows []int
	for i := 0; i < left.Rows(); i++ {
		for j := 0; j < right.Rows(); j++ {
			if objectsEqual(columnValue(leftKey, i), columnValue(rightKey, j)) {
				leftRows = append(leftRows, i)
				rightRows = append(rightRows, j)
			}
		}
	}

	out := left.takeRows(leftRows)
	rightPart := right.takeRows(rightRows)
	for _, c := range rightPart.Columns {
		if c.Name == key {
			continue
		}
		name := c.Name
		if out.Column(name) != nil {
			name += "_right"
		}
		out.Columns = append(out.Columns, &DataFrameColumn{Name: name, Values: c.Values})
	}
	return out
}

func seriesMean(elems []Object) float64 {
	if len(elems) == 0 {
		return 0
	}
	total := 0.0
	for _, e := range elems {
		total += asFloat(e)
	}
	return total / float64(len(elems))
}

// seriesStd is the population standard deviation.
func seriesStd(elems []Object) float64 {
	if len(elems) == 0 {
		return 0
	}
	mean := seriesMean(elems)
	sumSq := 0.0
	for _, e := range elems {
		d := asFloat(e) - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(elems)))
}
