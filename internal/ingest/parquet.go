package ingest

import (
	"strconv"

	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/file"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const parquetBatchSize = 8192

// readParquet reads every column of a parquet file as strings. Typed
// coercion happens later in Normalize, the same as for the text formats,
// so parquet files with string-encoded numerics behave identically to CSV
// exports of the same data.
func readParquet(path string) (*Raw, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, eris.Wrap(err, "parquet: open file")
	}
	defer pf.Close()

	descr := pf.MetaData().Schema
	numCols := descr.NumColumns()
	header := make([]string, numCols)
	for i := 0; i < numCols; i++ {
		header[i] = descr.Column(i).Name()
	}

	columns := make([][]string, numCols)
	for rg := 0; rg < pf.NumRowGroups(); rg++ {
		rgr := pf.RowGroup(rg)
		for i := 0; i < numCols; i++ {
			vals, err := readColumnChunk(rgr, i)
			if err != nil {
				return nil, err
			}
			columns[i] = append(columns[i], vals...)
		}
	}

	nrows := 0
	for _, col := range columns {
		if len(col) > nrows {
			nrows = len(col)
		}
	}

	rows := make([][]string, nrows)
	for r := 0; r < nrows; r++ {
		row := make([]string, numCols)
		for c := 0; c < numCols; c++ {
			if r < len(columns[c]) {
				row[c] = columns[c][r]
			}
		}
		rows[r] = row
	}

	return &Raw{Header: header, Rows: rows}, nil
}

// readColumnChunk drains one column chunk, stringifying each physical
// type. Nulls come back as empty strings and hit the sentinel/zero fill in
// Normalize.
func readColumnChunk(rgr *file.RowGroupReader, colIdx int) ([]string, error) {
	col, err := rgr.Column(colIdx)
	if err != nil {
		return nil, eris.Wrapf(err, "parquet: column %d", colIdx)
	}

	var out []string
	defLevels := make([]int16, parquetBatchSize)

	switch reader := col.(type) {
	case *file.ByteArrayColumnChunkReader:
		values := make([]parquet.ByteArray, parquetBatchSize)
		for {
			n, _, _ := reader.ReadBatch(parquetBatchSize, values, defLevels, nil)
			if n == 0 {
				break
			}
			for i := 0; i < int(n); i++ {
				if defLevels[i] > 0 {
					out = append(out, string(values[i]))
				} else {
					out = append(out, "")
				}
			}
		}

	case *file.Int32ColumnChunkReader:
		values := make([]int32, parquetBatchSize)
		for {
			n, _, _ := reader.ReadBatch(parquetBatchSize, values, defLevels, nil)
			if n == 0 {
				break
			}
			for i := 0; i < int(n); i++ {
				if defLevels[i] > 0 {
					out = append(out, strconv.FormatInt(int64(values[i]), 10))
				} else {
					out = append(out, "")
				}
			}
		}

	case *file.Int64ColumnChunkReader:
		values := make([]int64, parquetBatchSize)
		for {
			n, _, _ := reader.ReadBatch(parquetBatchSize, values, defLevels, nil)
			if n == 0 {
				break
			}
			for i := 0; i < int(n); i++ {
				if defLevels[i] > 0 {
					out = append(out, strconv.FormatInt(values[i], 10))
				} else {
					out = append(out, "")
				}
			}
		}

	case *file.Float32ColumnChunkReader:
		values := make([]float32, parquetBatchSize)
		for {
			n, _, _ := reader.ReadBatch(parquetBatchSize, values, defLevels, nil)
			if n == 0 {
				break
			}
			for i := 0; i < int(n); i++ {
				if defLevels[i] > 0 {
					out = append(out, strconv.FormatFloat(float64(values[i]), 'f', -1, 32))
				} else {
					out = append(out, "")
				}
			}
		}

	case *file.Float64ColumnChunkReader:
		values := make([]float64, parquetBatchSize)
		for {
			n, _, _ := reader.ReadBatch(parquetBatchSize, values, defLevels, nil)
			if n == 0 {
				break
			}
			for i := 0; i < int(n); i++ {
				if defLevels[i] > 0 {
					out = append(out, strconv.FormatFloat(values[i], 'f', -1, 64))
				} else {
					out = append(out, "")
				}
			}
		}

	case *file.BooleanColumnChunkReader:
		values := make([]bool, parquetBatchSize)
		for {
			n, _, _ := reader.ReadBatch(parquetBatchSize, values, defLevels, nil)
			if n == 0 {
				break
			}
			for i := 0; i < int(n); i++ {
				if defLevels[i] > 0 {
					out = append(out, strconv.FormatBool(values[i]))
				} else {
					out = append(out, "")
				}
			}
		}

	default:
		zap.L().Warn("parquet: unsupported physical type, column skipped",
			zap.Int("column", colIdx),
		)
	}

	return out, nil
}
