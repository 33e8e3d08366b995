package validate

import (
	"github.com/ppiankov/sdsvalidate/internal/model"
)

// Partition splits rows into retained and removed. A row is retained iff no
// error carries its line. Removed rows keep their errors' messages in order.
// Both outputs preserve the original row order.
func Partition(rows []model.Row, errs []model.ValidationError) ([]model.Row, []model.RemovedRow) {
	byLine := make(model.RowErrors)
	byLine.Add(errs...)

	retained := make([]model.Row, 0, len(rows))
	var removed []model.RemovedRow

	for _, row := range rows {
		rowErrs := byLine[row.Line]
		if len(rowErrs) == 0 {
			retained = append(retained, row)
			continue
		}
		reasons := make([]string, len(rowErrs))
		for i, e := range rowErrs {
			reasons[i] = e.Message
		}
		removed = append(removed, model.RemovedRow{
			Line:    row.Line,
			Fields:  row.Fields(),
			Reasons: reasons,
		})
	}

	return retained, removed
}
