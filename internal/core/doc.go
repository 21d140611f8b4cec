// Package core provides the employer registry built from the pension
// enrollment dataset.
//
// This package holds all domain logic independent of any UI or transport
// layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Loading
//
// [Load] opens a local path or an http(s) URL, decodes the legacy CP949
// encoding, validates the 22-column positional schema and runs the
// preprocessing pipeline exactly once:
//
//  1. Drop rows with a blank industry code and parse the rest as integers
//  2. Bind positional columns to domain labels
//  3. Drop administrative columns
//  4. Clean employer names
//  5. Derive withdrawal year and month
//  6. Derive the top-level region from the address
//  7. Keep active enrollments only
//  8. Derive per-enrollee amount and salary estimates
//
// The resulting [Registry] is immutable. Construct it once at startup and
// share the pointer; concurrent reads need no locking.
//
// # Queries
//
//   - [Registry.Find]: substring match on the cleaned name, largest employers first
//   - [Registry.Compare]: industry peer statistics next to the matched company
//   - [Registry.CompanyInfo]: full record of the best match
//   - [Registry.Data]: the whole working table
//
// # Error Handling
//
// Errors wrap one of the sentinels in errors.go so callers can branch with
// errors.Is. [MapError] turns them into user-facing messages with a support
// code:
//
//   - REG001: no employer matches the query
//   - SRC001-SRC002: dataset source errors
//   - SCH001: column layout does not match the expected schema
//   - DAT001: malformed numeric cell
//   - DEC001: undecodable CSV
package core
