// Package metrics provides run summaries that implement sim.Metric.
package metrics
