// Package dispatch implements nearest-available-robot selection for incoming
// service requests. Selection is a pure function over a fleet snapshot: the
// caller re-reads the registry immediately before selecting so that two
// requests cannot race onto the same idle robot.
package dispatch
