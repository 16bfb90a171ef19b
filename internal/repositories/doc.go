// Package repositories implements SQLite persistence for cached episode
// metadata.
//
// The cache is write-through: every episode listing fetched from the provider
// is upserted as it arrives, so offline search and status inspection never
// need a network round trip. Episodes are keyed by provider ID and re-caching
// refreshes the stored metadata rather than duplicating rows.
//
// Key Implementations:
//   - [EpisodeRepository] : Episode cache persistence with podcast-scoped queries
//   - [EpisodeCacheAdapter] : Pipeline-facing adapter that swallows duplicate rows
package repositories
