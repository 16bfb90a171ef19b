// Package tasks orchestrates the resumable artwork restore pipeline with real-time progress reporting.
//
// # Core Operations
//
// [RestoreEngine] drives four operations:
//
//  1. [RestoreEngine.Run] : The batch pipeline
//     - Fetches one page of episodes at the current batch size
//     - Skips episodes the ledger already settled, without network calls
//     - Processes the rest strictly one at a time, persisting each outcome
//     - Consults the operator control callback between batches
//
//  2. [RestoreEngine.FindEpisodes] : Title search over the full listing
//
//  3. [RestoreEngine.ProcessOne] : Single confirmed episode (search-and-confirm mode)
//
//  4. [RestoreEngine.CacheAll] : Populate the local episode cache
//
// # Operator Control
//
// [ControlFunc] abstracts the human-in-the-loop console prompt: a function
// from checkpoint state to a continue/stop/resize decision. Unattended
// deployments substitute [AutoContinue]. Batch size changes at the
// pre-process gate re-fetch the first page; changes after a batch apply to
// the next fetch only.
//
// # Sequential By Design
//
// Episodes are processed one at a time, pages in increasing order. This is
// backpressure protecting a rate-sensitive provider API, not a limitation:
// do not parallelize item processing.
//
// # Progress Reporting
//
// All operations send [ProgressUpdate] values through non-blocking channels
// (select with default), so a slow display can never stall the pipeline.
//
// # Episode Caching
//
// The optional [EpisodeCacher] interface persists episode metadata
// encountered during runs and scans. Cache errors are ignored so
// persistence never disrupts processing.
package tasks
