// Package mcp exposes the planner to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the
// REST API served by package api, and the JSON response is rendered as
// text for the agent.
//
// Tools:
//   - list_layouts: layouts in the catalogue with size, food, pies and teleports
//   - get_layout: rows, start and corners of one layout
//   - solve_layout: run A* on a catalogue layout or inline layout text
//   - get_run, list_runs: outcomes of previous solves
//   - replay_run: the board after each step of a solved run
//   - planner_rules: movement, pie and teleport rules
//
// Transport Modes:
//
// The MCP server can be served over stdio (server.ServeStdio) or mounted on
// the HTTP server at /mcp, where each POST body is handed to HandleMessage.
package mcp
