// Package injection builds the modified message body: it picks the day's
// banner from the sender's assigned set and splices banner and signature
// HTML into the email exactly once.
//
// Banner selection is a pure function of the UTC day number and the list
// length, so every recipient of every sender sees the same banner on a given
// day and rotation advances at day boundaries without any stored cursor.
//
// Injection is idempotent: marker tokens left in the body by a previous pass
// (and a prefix heuristic for signatures) make re-processing a no-op.
package injection
