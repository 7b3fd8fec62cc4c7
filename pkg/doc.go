// Package pkg holds the tierviz libraries.
//
// # Overview
//
// Tierviz turns the tier results of a water-management scenario into chart
// geometry: unit dots on a tier grid, a treemap and a bar chart. Nothing is
// drawn here; a renderer consumes the layout documents.
//
//   - [layout]: the geometry (category widths, tier positions, treemap, bars)
//   - [chart]: datasets, layout documents and the tier palette
//   - [integrations]: the COEQWAL API client
//   - [pipeline]: acquire → layout, with caching
//   - [cache], [store]: response cache and layout persistence
//   - [api]: the HTTP server
//   - [config], [errors], [observability], [buildinfo], [httputil]: support
//
// # Data flow
//
//	COEQWAL API or dataset file
//	         ↓
//	   pipeline.Acquire  →  chart.Dataset
//	         ↓
//	   chart.Compute     →  chart.Layout (JSON)
//	         ↓
//	   file, store, or HTTP response
package pkg
