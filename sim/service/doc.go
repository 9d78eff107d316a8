// Package service exposes the simulation as a transport-agnostic API used
// by the REST server, the WebSocket hub, the MCP tools and the CLI. It
// coordinates the session manager and the map catalog, runs algorithm
// comparisons and experiments, and renders environments as ASCII grids.
package service
