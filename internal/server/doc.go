// Package server implements the MCP (Model Context Protocol) server for
// bacterial colony analysis.
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
// Plate Information:
//   - colony_load: Load a plate image and get metadata
//   - colony_default_params: Default analysis parameters
//   - colony_brightness_profile: Brightness statistics and a threshold suggestion
//
// Analysis:
//   - colony_analyze: Count and measure colonies on one plate
//   - colony_analyze_batch: Analyze several plates concurrently
//
// Results:
//   - colony_overlay: Annotated PNG of a result
//   - colony_export_csv: Per-colony CSV
//   - colony_report: Plaintext report
//   - colony_history: Recent result summaries
//   - colony_history_clear: Drop stored results
//
// Labels:
//   - colony_read_label: OCR of a plate label
//
// # State
//
// Images are cached by path for the lifetime of the process. Analysis
// results live in a bounded history (newest first); overlays and exports
// refer to them by ID and default to the newest.
//
// # Error Handling
//
// Errors are returned as JSON-RPC error responses:
//   - -32601: unknown method
//   - -32602: malformed request or tool arguments, out-of-range parameters
//   - -32000: tool execution failure (unreadable image, unknown result ID)
package server
