/*
Package tessera is a runbook engine for release checklists: ordered steps whose
output is captured, scanned for failure patterns and persisted so an
interrupted run can resume where it stopped.

It follows a Hexagonal Architecture: the engine core is decoupled from its
adapters (run stores, HTTP API, MCP server, CLI), so tessera can be embedded
in any host application.

# Concept

A runbook is a named sequence of stages, each holding steps. Command steps run
through the shell or as an argv; builtin steps (like mesh snapshots) run in
process. After every step the run state is persisted, which is what makes
`resume` cheap. Captured output is scanned line by line for failure patterns,
so a step that exits zero but printed a traceback still fails.

# Usage

Load a runbook from YAML and run it:

	package main

	import (
		"context"
		"log"

		"github.com/tessera-io/tessera"
	)

	func main() {
		eng, err := tessera.New("runbook.yaml")
		if err != nil {
			log.Fatal(err)
		}

		state, err := eng.Run(context.Background())
		if err != nil {
			log.Printf("run %s finished: %v", state.ID, err)
		}
	}

Runbooks can also be assembled programmatically with runbook.NewBuilder; see
examples/embedded.
*/
package tessera
