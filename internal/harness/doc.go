// Package harness runs scripted survey sessions and checks the outcome.
//
// A scenario is a YAML file naming a catalog, an optional participant id,
// a list of steps (the same inputs a participant gives through the TUI or
// CLI) and a list of expectations about the final session:
//
//	name: follow_then_diverge
//	description: "Follow the AI in phase 1, diverge in phase 2"
//	catalog: ../catalogs/pilot.yaml
//	participant: P-01
//	steps:
//	  - action: start
//	  - action: show
//	  - action: wait
//	    ms: 2000
//	  - action: answer
//	    choice: A
//	  - action: continue
//	    feedback: true
//	expect:
//	  - type: compliance
//	    phase: phase1
//	    followed: 1
//	    total: 2
//
// Each run gets a fresh in-memory SQLite store, a fake clock starting at
// testutil.DefaultEpoch that only moves on "wait" steps, and a fixed
// session id, so the exported CSV is byte-for-byte reproducible and can be
// compared against golden files (see RunWithGolden).
//
// A step may name the error code it expects (error: NO_CHOICE). A session
// error on a step that expects none fails the scenario but does not stop
// it; storage failures abort the run.
package harness
