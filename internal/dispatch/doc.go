// Package dispatch authenticates, parses and routes platform interactions.
//
// Every inbound call moves through a fixed sequence:
//
//  1. AwaitHeaders: signature and timestamp headers must be present and non-empty
//  2. AwaitVerification: Ed25519 over timestamp||body against the trusted key
//  3. AwaitParse: body must be valid JSON
//  4. Route: Ping → Pong, ApplicationCommand → registry handler, anything else rejected
//  5. Respond: a Result holding the status code and JSON body
//
// Any step may jump straight to Respond with a Rejection.
//
// Error responses:
//   - 401 Unauthorized: headers missing, or signature invalid
//   - 400 Broken Request Body: body is not valid JSON
//   - 400 Unexpected Request Body: unsupported type, unknown command, or a
//     command whose required options are missing
//
// Rejections never include key material, signatures, or parser internals.
// The Dispatcher holds no per-request state and is safe for concurrent use.
package dispatch
