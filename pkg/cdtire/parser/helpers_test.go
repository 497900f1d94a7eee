package parser

import (
	"fmt"

	"github.com/ukaji3/cdtire-go/pkg/cdtire/models"
)

// sheet builds a worksheet from literal rows. Strings become text cells,
// numbers become numeric cells and nil becomes an empty cell.
func sheet(rows ...[]any) models.Worksheet {
	ws := models.Worksheet{Name: "Sheet1", Rows: make([]models.Row, len(rows))}
	for i, row := range rows {
		cells := make(models.Row, len(row))
		for j, v := range row {
			switch x := v.(type) {
			case nil:
			case string:
				cells[j] = models.Text(x)
			case int:
				cells[j] = models.Number(float64(x))
			case float64:
				cells[j] = models.Number(x)
			default:
				panic(fmt.Sprintf("unsupported cell %T", v))
			}
		}
		ws.Rows[i] = cells
	}
	return ws
}
