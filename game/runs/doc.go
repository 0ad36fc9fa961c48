// Package runs stores solve runs for the Pacman planner.
//
// The runs package implements:
//   - Thread-safe run storage and retrieval
//   - Optional JSON file persistence
//   - Run cleanup and expiration
//   - Solution export as text, JSON or YAML
//
// Core Types:
//
// Manager keeps runs in memory and falls back to its persistence layer on a
// cache miss. FilePersistence writes one JSON document per run, including the
// layout rows, so a persisted run can be replayed without the catalogue.
//
// Usage:
//
//	persistence, err := runs.NewFilePersistence("runs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := runs.NewManagerWithPersistence(persistence, logger)
//	if err := manager.LoadPersistedRuns(); err != nil {
//		log.Fatal(err)
//	}
//
//	run, err := manager.Get(runID)
//	err = runs.WriteSolution(os.Stdout, run, runs.FormatText)
package runs
