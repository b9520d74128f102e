package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/aguanorte/cadastro-cli/internal/table"
)

const duplicatesSheet = "Matriculas Duplicadas"

// WriteDuplicatesXLSX writes the duplicated registration records as a
// formatted spreadsheet: styled header, fixed column widths, frozen header
// row. rows are table indices, typically from metrics.DuplicateRows.
func WriteDuplicatesXLSX(tbl *table.Table, rows []int, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", duplicatesSheet)

	cols := tbl.Columns()
	for j, name := range cols {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return eris.Wrap(err, "export: header cell name")
		}
		if err := f.SetCellValue(duplicatesSheet, cell, name); err != nil {
			return eris.Wrap(err, "export: write header")
		}
	}

	for r, idx := range rows {
		for j, name := range cols {
			cell, err := excelize.CoordinatesToCellName(j+1, r+2)
			if err != nil {
				return eris.Wrap(err, "export: cell name")
			}
			var value interface{}
			if nums, ok := tbl.Numbers(name); ok {
				value = nums[idx]
			} else if strs, ok := tbl.Strings(name); ok {
				value = strs[idx]
			}
			if err := f.SetCellValue(duplicatesSheet, cell, value); err != nil {
				return eris.Wrap(err, "export: write cell")
			}
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0077B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return eris.Wrap(err, "export: header style")
	}
	if err := f.SetRowStyle(duplicatesSheet, 1, 1, headerStyle); err != nil {
		return eris.Wrap(err, "export: apply header style")
	}

	lastCol, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return eris.Wrap(err, "export: last column name")
	}
	if err := f.SetColWidth(duplicatesSheet, "A", lastCol, 20); err != nil {
		return eris.Wrap(err, "export: column widths")
	}

	if err := f.SetPanes(duplicatesSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return eris.Wrap(err, "export: freeze header")
	}

	return eris.Wrap(f.SaveAs(path), "export: save xlsx")
}

// MatriculaLabel formats a registration id the way the spreadsheet shows
// it: whole ids without a decimal part.
func MatriculaLabel(id float64) string {
	if id == float64(int64(id)) {
		return strconv.FormatInt(int64(id), 10)
	}
	return strconv.FormatFloat(id, 'f', -1, 64)
}
