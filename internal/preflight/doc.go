// Package preflight inspects a local workspace and records whether the
// development environment is provisioned.
//
// A run is a fixed sequence of CheckGroups. Each group fans its probes out
// concurrently and joins before the next group starts:
//
//   - Foundational tools (runtime, package manager, version control)
//   - Project structure
//   - Dependencies
//   - Package builds
//   - Build system (type checker, linter, core package build)
//   - Environment files
//   - IDE configuration
//   - Git hooks
//
// If a foundational tool is missing the run stops after the first group.
//
// Use Plan to build the groups for a Layout and an Orchestrator to run them:
//
//	layout := preflight.DefaultLayout(root)
//	orch := preflight.NewOrchestrator(
//	    preflight.WithExecutor(preflight.NewExecExecutor(layout.SearchDirs()...)),
//	)
//	res, err := orch.Run(ctx, preflight.Plan(layout))
//	if errors.Is(err, preflight.ErrFoundationalMissing) {
//	    // res.Log holds the partial log, res.Aborted is set
//	}
//
// Probes never return errors. Every failure mode becomes an Outcome.
package preflight
