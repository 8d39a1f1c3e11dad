// Package relay implements the webhook-triggered injection pipeline: guard,
// payload normalization, assignment resolution, banner rotation, content
// injection, and forwarding.
//
// The relay both receives webhook payloads and produces new outbound
// messages that can recursively trigger the same webhook, so every request
// passes the loop guard before any other work. Marker headers on messages we
// forwarded, plus a Redis message-id dedup for provider re-deliveries that
// arrive without our headers, keep re-entry a no-op.
package relay
