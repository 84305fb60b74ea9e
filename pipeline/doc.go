// Package pipeline runs producer and consumer units against a shared
// bounded buffer and supervises their lifecycle.
//
// Producers drive disjoint slices of a source sequence into the buffer,
// consumers drain it into exclusively-owned destination slices, and the
// orchestrator wires everything together: it builds the buffer from a
// validated Config, starts N producers and M consumers, closes the buffer
// once all producers finish, waits for the consumers to drain, and verifies
// that no item was lost or duplicated. The run moves through the states
// Idle, Running, Draining and Done.
//
// Either buffer backend from this module can be used: the
// condition-variable buffer in the root package or the channel-backed one
// in chanbuf, selected by Config.Backend.
package pipeline
