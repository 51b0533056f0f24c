// Package main hosts the foodhub CLI entrypoint and command graph.
//
// The Cobra-based command tree drives the token queue directly against the
// configured storage backend: issuing tokens, serving and clearing queues,
// rendering the board, printing menus, and running the staff HTTP API. It
// centralizes configuration resolution and logging setup so subcommands only
// deal with output.
package main
