// Package elasticbuf models a two-stage valid/ready elastic buffer at the
// cycle level.
//
// The buffer sits between a producer and a consumer that share one clock. It
// holds at most two elements: Main, which the consumer sees, and Overflow,
// which only fills when the consumer stalls while Main is occupied. That one
// spare slot lets the buffer absorb a single cycle of backpressure without
// stalling the producer in the same cycle.
//
// Both handshake outputs are registered. OutputValid and InputReady are
// computed from the state committed at the end of the previous cycle, never
// from the inputs of the current one, so producer and consumer logic never
// forms a combinational loop through the buffer.
//
// A cycle of the buffer looks like:
//
//	out := buf.Outputs()            // registered, from last cycle's commit
//	in := drive(out)                // producer and consumer decide
//	transfer := buf.Tick(in)        // accept/drain, then commit next state
//
// Next is the pure transition function behind Tick, for callers that want to
// hold the state themselves.
package elasticbuf
