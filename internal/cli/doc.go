// Package cli implements the command-line interface for bizevents.
//
// The cli package provides the Cobra-based commands that run site adapters
// (run), serve the REST API (serve), list the registered sites (sites) and
// export stored events as iCalendar (export). It wires configuration,
// logging, storage, metrics and the ingestion coordinator together.
package cli
