// Package chart defines the documents that travel between acquisition,
// layout and storage.
//
// A [Dataset] is the input to a layout: the objectives of one scenario
// (optionally merged with a baseline) plus the ordered category and tier
// lists. A [Layout] is the output: the computed marks together with the
// parameters that produced them, ready to be written to disk, returned by
// the API or persisted in a store.
//
// Both types carry json and bson tags and can be round-tripped through
// files with [ReadDatasetFile]/[WriteDatasetFile] and
// [ReadLayoutFile]/[WriteLayoutFile].
package chart
