// Package jobs provides the client-side ledger of service jobs that have been
// initiated but whose output has not been written locally yet.
//
// # Overview
//
// The ledger is a set of models.InitiatedJob keyed by job id. FileRepository
// keeps it in a single JSON array file and rewrites the whole file on every
// change through a temp file and rename, so a crash mid-write leaves the
// previous version intact. A missing file is an empty ledger. A file that
// does not parse is logged as common.ErrLedgerCorrupt and treated as empty.
//
// Concurrent coldvault processes sharing one ledger can lose each other's
// updates; only in-process calls are serialized.
//
// Typical Usage
//
//	repo := jobs.NewFileRepository(path, log)
//	_ = repo.Insert(ctx, job)
//	removed, _ := repo.Prune(ctx, time.Now(), 24*time.Hour)
//	pending, _ := repo.List(ctx)
//	_ = repo.Remove(ctx, job.JobID)
package jobs
