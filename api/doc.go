// Package api provides the HTTP REST API for the Pacman planner.
//
// Endpoints:
//
// Layouts:
//   - GET  /api/layouts          - List the layout catalogue
//   - GET  /api/layouts/{name}   - Layout detail with rows, start and corners
//   - POST /api/layouts          - Save a layout: {"name": "...", "layout": "..."} or {"name": "...", "rows": [...]}
//
// Planning:
//   - POST   /api/solve              - Run A*: {"layout", "layout_text", "heuristic", "max_expansions"}
//   - GET    /api/runs               - List runs (?sort=created|accessed|cost|expanded&order=asc|desc&limit=N&layout=ID)
//   - GET    /api/runs/{id}          - Run detail
//   - DELETE /api/runs/{id}          - Delete a run
//   - GET    /api/runs/{id}/replay   - Every intermediate state of a solved run
//   - POST   /api/runs/{id}/play     - Stream the replay to WebSocket viewers (?delay_ms=N)
//
// Other:
//   - GET /api/health
//   - GET /ws?run=<id> - WebSocket feed of replay frames
//
// A solve that finds no plan still returns 201 with status "unsolvable"
// or "expansion_limit_exceeded"; only bad input and missing resources are
// errors.
//
// Error Handling:
//
// Errors are returned as JSON, {"error": "message"}, with the status
// derived from the service error: 404 for unknown layouts and runs, 400
// for invalid layouts and parameters, 409 when replaying a run that has
// no solution.
package api
