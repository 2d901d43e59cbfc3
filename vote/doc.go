// Package vote implements the vote ingestion and tally context.
//
// The module owns submission orchestration (validate, mint voter id, append to
// the configured store) and tally reads. Persistence is polymorphic behind
// ports.VoteStore: a relational adapter serves both writes and tallies, while
// queue adapters accept writes only and hand aggregation to the drainer
// worker. Business rules stay in application/domain layers; infrastructure is
// isolated behind ports and adapters.
package vote
