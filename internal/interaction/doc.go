// Package interaction models the platform's interaction envelope and the
// responses it accepts.
//
// Numeric tags from the wire are mapped onto closed variants at the boundary:
// a request is a Ping, an ApplicationCommand, or Unsupported; a response is a
// Pong or a ChannelMessage. New platform types land in Unsupported rather than
// matching the wrong branch.
package interaction
