// Package webhook implements the HTTP trust boundary.
//
// Request flow for POST /webhooks/{provider}:
//
//  1. Resolve the provider. Unknown and disabled providers get the same
//     neutral acknowledgment, so the response never reveals which
//     integrations are installed.
//  2. Verify the HMAC signature and replay timestamp against the raw body.
//     Any failure is a generic 401.
//  3. Normalize the payload. Non-actionable events are acknowledged with
//     200 so the upstream service never retries them; undecodable payloads
//     are a 400.
//  4. Render the receipt and hand it to the print dispatcher. Printer
//     failures are logged and acknowledged with 200; the provider cannot
//     fix our hardware and must not be driven into retry loops by it.
//
// GET / is an unauthenticated liveness probe. GET /ws/preview streams
// rendered receipts to operator consoles over a websocket. GET /jobs lists
// recent print outcomes from the journal.
//
// No error path leaks secrets, stack traces or file paths to the response.
package webhook
