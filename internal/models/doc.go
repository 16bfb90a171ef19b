// Package models defines domain entities for the podfix artwork restore pipeline.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing provider data
//   - [Episode] : Episode metadata from the hosting provider's listing API
//   - [EpisodePage] : One page of a paginated episode listing with totals
//   - [UploadResult] : Provider acknowledgement of an artwork upload
//
// 2. Pipeline records owned by the local process
//   - [Outcome] : Terminal classification (success/failed/skipped) of one episode
//   - [RunMetadata] : Counters, pagination cursor, and completion state for a run
//   - [PersistedEpisode] : Cached episode row in the local SQLite database
//
// Outcome and RunMetadata carry JSON tags because they are the wire format of
// the durable progress ledger; new fields must be optional so older ledger
// files keep loading.
package models
