package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the per-run rows as CSV string. Metric losses are
// emitted one column per metric, in sorted metric order.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	metrics := metricColumns(r)

	// Header
	sb.WriteString("run_id,created_at,steps,data_source,loss")
	for _, m := range metrics {
		sb.WriteString("," + m)
	}
	sb.WriteString("\n")

	// Rows
	for _, run := range r.Runs {
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%s,%.6f",
			run.RunID,
			run.CreatedAt,
			run.Steps,
			run.DataSource,
			run.Loss,
		))
		for _, m := range metrics {
			sb.WriteString(fmt.Sprintf(",%.6f", run.MetricLosses[m]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
