// Package harness provides conformance testing for the bookkeeping
// engine.
//
// Scenarios are YAML files describing a complete run: disease model,
// population, formation and dissolution models, and optional demographic
// dynamics. The harness compiles a scenario into a run configuration,
// executes it with a static contact graph, and validates the stratified
// prevalence output two ways:
//
//   - inline assertions on individual series values
//   - golden-file comparison of the rendered prevalence CSV
//
// # Scenario Format
//
//	name: sir_static
//	description: "What this scenario validates"
//	disease: SIR
//	modes: 1
//	steps: 3
//	seed: 42
//	population:
//	  n: 4
//	  statuses: [0, 0, 1, 2]
//	  attributes:
//	    - name: risk
//	      kind: categorical
//	      values: [high, low, high, low]
//	formation:
//	  formula: "~edges"
//	  coefs: [-4.5]
//	dissolution:
//	  duration: 60
//	stratifyBy: risk
//	assertions:
//	  - type: series_value
//	    series: i.num
//	    at: 1
//	    count: 1
//
// # Assertion Types
//
//   - series_value: one series holds an exact count at one step
//   - series_constant: one series holds the same count at every step
//   - row_count: the table records exactly N steps
//
// # Deterministic Testing
//
// Scenarios run with a fixed run id, a seeded RNG, and a static graph
// evolver, so repeated executions produce byte-identical output. Golden
// files hold the full CSV rendering; regenerate them with:
//
//	go test ./internal/harness -update
package harness
