// Package service provides the business logic layer for the Pacman planner.
//
// The service package implements:
//   - Layout catalogue access (list, inspect, save)
//   - Solve runs with memoised search results
//   - Run lifecycle management
//   - Solution replay as rendered frames
//
// Core Interfaces:
//
// SolverService is the main service interface used by the HTTP, WebSocket and
// MCP transports. RunManager stores runs. LayoutManager loads layouts from the
// catalogue directory.
//
// Architecture:
//
// The service layer sits between the transports and the search package. A
// search result is cached in an LRU keyed by layout contents, heuristic and
// expansion cap, so solving the same maze twice only costs a cache lookup;
// every call still creates its own run with a fresh UUID.
//
// Usage:
//
//	runMgr := runs.NewManager()
//	layoutMgr, _ := config.NewManager("layouts")
//	solver, err := service.NewSolverService(runMgr, layoutMgr, logrus.StandardLogger(), 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	run, err := solver.Solve(ctx, service.SolveRequest{Layout: "tinySearch", Heuristic: "mst"})
//	replay, err := solver.Replay(ctx, run.ID)
package service
