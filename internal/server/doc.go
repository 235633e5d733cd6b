// Package server implements the MCP (Model Context Protocol) server for
// nucleus shape analysis.
//
// The server exposes nucleus detection, angle profiling and interactive
// segment editing as MCP tools, so an assistant can inspect a micrograph,
// adjust the segmentation of a nuclear border and compare a population of
// nuclei.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Nucleus Operations:
//   - nucleus_load: Load image and get metadata
//   - nucleus_detect: Detect the nucleus and measure its shape
//   - nucleus_profile: Angle profile from the landmark
//   - nucleus_segments: Current segmentation of the profile
//
// Segment Edits:
//   - segment_update: Move a segment's boundaries
//   - segment_lock: Pin or release a segment
//   - segment_merge, segment_unmerge: Join adjacent segments and undo it
//   - segment_split: Divide a segment at an index
//   - segment_rescale: Preview the segments on another profile length
//
// Population:
//   - population_median: Median profile and rescaled segments for many images
//
// # Sessions
//
// Each image path has one session nucleus, analysed on first use and kept
// for the lifetime of the process. Segment edits change that nucleus' ring,
// so later tools see them; nucleus_segments with reset discards them.
// Edits are validated before anything changes: a rejected edit leaves the
// ring exactly as it was.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: {"error": message, "reason": label}, where label names the
//     rejected rule for segment edits ("locked", "too_short",
//     "next_too_short", "inversion", ...) and is "unknown" otherwise
//
// # Usage
//
// The server is typically started by an MCP client through the nucleus-mcp
// serve command:
//
//	srv := server.New(server.Options{Pipeline: pipeline, Logger: logger})
//	if err := srv.Run(ctx, os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
