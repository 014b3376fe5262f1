// Package client contains client-side building blocks for talking to the
// focustank server and bootstrapping local storage.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register/GetSalt/Login, Ping, FetchAll and ReplaceAll.
//  2. A gRPC implementation (see GRPCClient) that injects the access token
//     via an interceptor, refreshes expired tokens once per call, and maps
//     gRPC status codes to the sentinel errors in internal/common.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens
//     the SQLite database and applies the embedded goose migrations.
//
// # Error Handling
//
// Unauthenticated and PermissionDenied map to common.ErrUnauthorized;
// Unavailable and DeadlineExceeded map to common.ErrTransport.
//
// # Concurrency
//
// GRPCClient is safe for concurrent use; token rotation is serialized.
package client
