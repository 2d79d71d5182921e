// Package client is the boundary between coldvault and the archive service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     multipart upload calls, the asynchronous job calls, and the thin vault
//     operations the CLI passes through.
//  2. A concrete implementation over the AWS SDK Glacier client (see
//     GlacierClient). Requests use the "-" account id, i.e. the account that
//     owns the credentials.
//
// # Error Handling
//
// Every failed service call is wrapped with common.ErrService. Credential
// problems additionally match ErrUnauthorized and unknown vaults, jobs or
// uploads match ErrNotFound; callers use errors.Is.
//
// Transport, request signing and HTTP retries are the SDK's business.
package client
