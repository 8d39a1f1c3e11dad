// Package assignment resolves a sender address to the signature and banner
// set assigned to that sender.
//
// Resolution is read-only: the service looks up the sender's profile, the
// profile's single active assignment, and the assignment's signature and
// ordered banner references. A sender with no profile or no active
// assignment resolves to nil, which the relay treats as "forward unmodified"
// rather than as an error.
//
// Repository implementations live in repository/postgres/.
package assignment
