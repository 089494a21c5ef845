// Package core provides the session service behind the DataSweeper UI.
//
// This package holds all per-file state and runs the table pipeline on it,
// independent of any transport. It can be used by the web handlers, a CLI or
// tests without modification.
//
// # Sessions
//
// Every uploaded file becomes one session, keyed by a random UUID. A session
// holds the cleaned table, the current column selection and a list of applied
// steps. Cleaning replaces the table; the selection is applied on every read
// so it can be widened again:
//
//	results, err := svc.IngestBatch(ctx, uploads)
//	id := results[0].Snapshot.ID
//	svc.RemoveDuplicates(ctx, id)
//	svc.FillMissing(ctx, id)
//	svc.SelectColumns(ctx, id, []string{"region", "sales"})
//	artifact, err := svc.Export(ctx, id, codec.Excel)
//
// Actions on one session are serialized by its mutex. Sessions never share
// tables, so one file's choices never affect another's.
//
// # Resource limits
//
//   - Parses are bounded by an [IngestLimiter]; callers wait up to the
//     configured time and then fail with [ErrTooManyUploads].
//   - The number of sessions is capped; beyond it ingest fails with
//     [ErrTooManySessions].
//   - [Service.StartJanitor] evicts sessions idle longer than the TTL.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, parsing, type, batch size)
//   - PIPE001-PIPE004: Pipeline errors (fill, projection, export format)
//   - SES001-SES002: Session errors (expired, capacity)
//   - UPL002-UPL005: Ingest errors (busy, cancelled, timeout)
package core
