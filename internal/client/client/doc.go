// Package client is the remote identity gateway of the healthkeeper client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Gateway interface) with one
//     RPC-style identity operation, ResolveIdentity, whose request varies by
//     login type (wechat, guest, auto), plus the profile read/update calls.
//  2. A tagged Result type. Every call yields exactly one of ResultSuccess,
//     ResultFailure (the backend answered and said no) or ResultUnreachable
//     (no answer was obtained). Callers switch on Result.Kind instead of
//     inspecting errors, so "rejected" and "unknown" cannot be confused.
//  3. A gRPC implementation (see GRPCGateway) exchanging structpb.Struct
//     payloads, attaching the session token as metadata and mapping gRPC
//     status codes onto result kinds.
//
// # Error Handling
//
// Result.Err carries the cause and can be matched with errors.Is against
// ErrUnavailable, ErrUnauthorized and ErrMalformedResponse.
package client
