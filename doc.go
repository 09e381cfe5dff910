// Package vsmgo implements an in-memory vector space model (VSM) search
// index: sparse term-document vectors, a pluggable term-weighting scheme,
// and an inverted posting index over them.
//
// # Key Components
//
//   - Builder: ingests (document, terms) pairs and finalizes them into an
//     Index via a three-phase weighting and posting-sort pipeline.
//   - Index: the finalized, queryable VSM — builds query vectors, retrieves
//     candidate documents from the posting index, and ranks them by cosine
//     similarity or the Dice coefficient.
//   - backend.Dictionary / backend.Storage / backend.Postings: the
//     capability contracts a concrete backend must satisfy. internal/memindex
//     ships the default in-memory implementation; persist.Store round-trips
//     a built Index through SQLite.
//
// # Observability
//
// Builder accepts a pluggable Logger, matching this module's ambient
// logging convention; the default is a no-op logger so instantiating a
// Builder never imposes a logging cost unless a caller opts in.
package vsmgo
