// Package coeqwal fetches scenario tier results from the COEQWAL API and
// turns them into layout datasets.
//
// The tiers endpoint reports, per tier group, either a single tier level
// ("single_value") or a histogram of how many objectives sit in each tier
// ("multi_value"). [Client.FetchScenario] expands both into one
// [layout.Objective] per unit, numbered in response order, and fills in
// water volume and unmet demand with the deterministic placeholders of
// [Enrich] until the API serves real values.
//
// Group and histogram keys are read in JavaScript property order
// (integer-like keys ascending, then the rest as they appear), which is
// the order the API's browser clients see.
package coeqwal
