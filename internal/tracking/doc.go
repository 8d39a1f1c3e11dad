// Package tracking implements banner engagement tracking.
//
// On the outbound path it creates a tracking session for each message that
// carries a banner, rewrites the banner's links through the click-redirect
// endpoint, and appends the view pixel.
//
// On the async path it serves the pixel and redirect endpoints hit when a
// recipient opens or clicks. These endpoints never surface errors to the
// recipient: a broken pixel or dead redirect is user-visible and severe,
// whereas a lost analytics row is not. Datastore write failures are logged
// and swallowed.
package tracking
