// Package population is the single source of truth for who exists in a
// simulated population, who is active, and what their covariates are.
//
// # Arena layout
//
// Nodes live in one or two mode sub-arenas. Node ids are stable handles
// assigned at allocation time and never reused or renumbered: births append
// rows to the owning mode's sub-arena and receive fresh ids at the end of
// the id space. Mode membership and row location are answered through an
// index map, so the mode-ordered serialization (mode-1 block followed by
// mode-2 block, see OrderedIDs) is derived by construction rather than
// maintained by careful concatenation of parallel slices.
//
// Deaths deactivate rows in place. Inactive nodes are filtered by queries,
// never deleted, so historical ids stay valid for back-reference from graph
// snapshots.
//
// # Columns
//
// Every attribute is a typed column (categorical or numeric) with exactly
// one value per node. All columns in a store have identical length at all
// times; a divergence is an internal invariant violation reported as
// INCONSISTENT_ATTRIBUTE_LENGTH and is always fatal to the run.
package population
