// Package core checks bulk recipient tables before a batch is sent.
//
// This package contains the domain logic for validating an uploaded table of
// recipients against a message template, independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Template: the channel (sms, email or letter) plus the text whose
//     ((placeholders)) the table must supply.
//   - Reconciliation: the header row compared with the template, reporting
//     missing, optional, extra and duplicated columns once per table.
//   - Row: the cells of one record, resolved by case, space, underscore and
//     hyphen insensitive column names.
//   - Processor: the streaming loop that yields one [Outcome] per row and
//     stops when the time budget runs out.
//   - Summary: counts, samples and table-level errors for the whole batch.
//
// # Streaming
//
// A [Processor] holds one row at a time (one chunk when Workers is above 1),
// regardless of file size. The flow is:
//
//  1. The caller wraps its reader with [NewCSVSource], which strips a BOM
//     and replaces invalid UTF-8
//  2. [NewProcessor] reads the header and reconciles it with the template
//  3. Each call to [Processor.Next] validates the next non-empty row
//  4. [Processor.Summary] reports the batch once iteration ends
//
// Iteration is single use. Ranging over [Processor.Outcomes] a second time
// yields nothing and [Processor.Err] reports [ErrExhausted].
//
// # Error Handling
//
// Row and table problems are [recipient.Error] values with a stable kind.
// Technical errors are mapped to user-friendly messages using [MapError].
// Each category has a unique code for support reference:
//
//   - PHN001-PHN009: Phone number errors
//   - EML001-EML002: Email address errors
//   - ADR001-ADR008: Postal address errors
//   - ROW001-ROW009: Row and column errors
//   - PRC001: Processing time budget exceeded
//   - FILE001-FILE005: File errors (size, encoding, format)
//   - REQ001-REQ006: Request errors (busy, cancelled, bad channel, bad form)
//
// # Concurrency
//
// Uploads are bounded by a [BatchLimiter]. Row validation itself touches no
// shared state; the allow-list and duplicate checks run in row order after
// it.
package core
