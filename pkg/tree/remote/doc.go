// Package remote drives a tree that lives in another process.
//
// A Backend implements tree.Backend over a dry shadow document and records
// every mutation as a protocol.Patch. A Session owns a Backend and a
// websocket connection: it runs submitted work and paints on one goroutine,
// and sends the patches of each paint as one frame. On the other end, a
// Mirror applies those frames to a local dry document, and a Client wraps
// a Mirror with the connection handshake.
//
// The first frame of every session is a snapshot of the shadow tree, so a
// client that reconnects or falls behind asks for a resync instead of
// replaying history.
package remote
