package rows

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// FromRecord converts an Arrow record batch into plain rows. Encoded
// media columns come through as their struct or binary cell values,
// ready for the cell transformer.
func FromRecord(record arrow.Record) []Row {
	numRows := int(record.NumRows())
	numCols := int(record.NumCols())

	result := make([]Row, numRows)
	for rowIdx := 0; rowIdx < numRows; rowIdx++ {
		row := make(Row, numCols)
		for colIdx := 0; colIdx < numCols; colIdx++ {
			row[record.ColumnName(colIdx)] = cellFromArray(record.Column(colIdx), rowIdx)
		}
		result[rowIdx] = row
	}
	return result
}

func cellFromArray(arr arrow.Array, idx int) any {
	if arr.IsNull(idx) {
		return nil
	}

	switch typed := arr.(type) {
	case *array.Boolean:
		return typed.Value(idx)
	case *array.Int8:
		return typed.Value(idx)
	case *array.Int16:
		return typed.Value(idx)
	case *array.Int32:
		return typed.Value(idx)
	case *array.Int64:
		return typed.Value(idx)
	case *array.Uint8:
		return typed.Value(idx)
	case *array.Uint16:
		return typed.Value(idx)
	case *array.Uint32:
		return typed.Value(idx)
	case *array.Uint64:
		return typed.Value(idx)
	case *array.Float32:
		return typed.Value(idx)
	case *array.Float64:
		return typed.Value(idx)
	case *array.String:
		return typed.Value(idx)
	case *array.LargeString:
		return typed.Value(idx)
	case *array.Binary:
		return append([]byte(nil), typed.Value(idx)...)
	case *array.LargeBinary:
		return append([]byte(nil), typed.Value(idx)...)
	case *array.FixedSizeBinary:
		return append([]byte(nil), typed.Value(idx)...)
	case *array.List:
		start, end := typed.ValueOffsets(idx)
		return sliceFromArray(typed.ListValues(), int(start), int(end))
	case *array.LargeList:
		start, end := typed.ValueOffsets(idx)
		return sliceFromArray(typed.ListValues(), int(start), int(end))
	case *array.FixedSizeList:
		length := int(typed.DataType().(*arrow.FixedSizeListType).Len())
		return sliceFromArray(typed.ListValues(), idx*length, (idx+1)*length)
	case *array.Struct:
		structType := typed.DataType().(*arrow.StructType)
		cell := make(map[string]any, typed.NumField())
		for fieldIdx := 0; fieldIdx < typed.NumField(); fieldIdx++ {
			cell[structType.Field(fieldIdx).Name] = cellFromArray(typed.Field(fieldIdx), idx)
		}
		return cell
	default:
		return arr.ValueStr(idx)
	}
}

func sliceFromArray(values arrow.Array, start, end int) []any {
	cell := make([]any, 0, end-start)
	for i := start; i < end; i++ {
		cell = append(cell, cellFromArray(values, i))
	}
	return cell
}
