// Package matchaudit evaluates entity-resolution runs against ground-truth
// labels and reconciles previously emitted dashboard summaries against a
// fresh recomputation from the run artifacts.
//
// Example usage:
//
//	engine, err := matchaudit.New(
//	    matchaudit.WithOutputRoot("output"),
//	    matchaudit.WithTolerance(0.01),
//	    matchaudit.WithRuns("2025*"), // optional glob or regex over run ids
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Build the summary of every run and write it for the dashboard
//	doc, err := engine.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.WriteSummary(doc, ""); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later, audit the emitted summary against the artifacts
//	report, err := engine.Audit(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := report.Err(); err != nil {
//	    fmt.Println(err) // one or more runs failed
//	}
package matchaudit
