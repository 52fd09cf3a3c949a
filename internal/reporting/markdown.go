package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Runs: %d\n\n", r.RunCount))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Best Run | %s (%.6g) |\n", r.Summary.BestRunID, r.Summary.BestLoss))
	sb.WriteString(fmt.Sprintf("| Worst Run | %s (%.6g) |\n", r.Summary.WorstRunID, r.Summary.WorstLoss))
	sb.WriteString(fmt.Sprintf("| Mean Loss | %.6g |\n", r.Summary.MeanLoss))
	sb.WriteString("\n")

	// Per-metric losses across runs
	sb.WriteString("## Metric Losses\n\n")
	if len(r.MetricSummary) > 0 {
		sb.WriteString("| Metric | Mean Loss | Runs |\n")
		sb.WriteString("|--------|-----------|------|\n")
		for _, m := range r.MetricSummary {
			sb.WriteString(fmt.Sprintf("| %s | %.6g | %d |\n", m.Metric, m.MeanLoss, m.RunCount))
		}
	} else {
		sb.WriteString("No metric losses available.\n")
	}
	sb.WriteString("\n")

	// Per-run table
	sb.WriteString("## Runs\n\n")
	if len(r.Runs) > 0 {
		metrics := metricColumns(r)
		sb.WriteString("| Run | Created (ms) | Steps | Source | Loss |")
		for _, m := range metrics {
			sb.WriteString(fmt.Sprintf(" %s |", m))
		}
		sb.WriteString("\n")
		sb.WriteString("|-----|--------------|-------|--------|------|")
		for range metrics {
			sb.WriteString("------|")
		}
		sb.WriteString("\n")
		for _, run := range r.Runs {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %.6g |",
				run.RunID, run.CreatedAt, run.Steps, run.DataSource, run.Loss))
			for _, m := range metrics {
				sb.WriteString(fmt.Sprintf(" %.6g |", run.MetricLosses[m]))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No runs available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// metricColumns returns the union of metric names across runs, sorted.
func metricColumns(r *Report) []string {
	set := make(map[string]struct{})
	for _, run := range r.Runs {
		for metric := range run.MetricLosses {
			set[metric] = struct{}{}
		}
	}
	metrics := make([]string, 0, len(set))
	for metric := range set {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)
	return metrics
}
