// Package ws streams store events to websocket clients.
//
// Every connected client receives each committed mutation as one JSON text
// frame, in commit order. A client may narrow the stream with the types
// query parameter (comma-separated event types). Clients that fall behind
// by more than the send buffer are disconnected.
package ws
