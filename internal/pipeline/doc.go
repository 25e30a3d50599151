// Package pipeline runs the BoQ data pipeline end to end.
//
// A Runner executes the named steps for one immutable
// config.PipelineConfig:
//
//	generate  synthesize raw records and write the raw store (CSV)
//	clean     clean the raw store, write the canonical store (JSON),
//	          verify it against the canonical schema and write the
//	          optional workbook
//
// Each step's state (pending, active, completed, failed, skipped) and
// timing is tracked in a StepState and reported in a domain.RunReport.
// When a step fails the remaining steps are skipped and the run fails.
//
// Example usage:
//
//	runner := pipeline.NewRunner(cfg.Pipeline,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithTelemetry(tel))
//
//	report, err := runner.Run(ctx, pipeline.ModeAll)
//
// Runners share no state, so several configurations may run concurrently.
package pipeline
