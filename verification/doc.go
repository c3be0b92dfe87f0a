// Package verification drives an elastic buffer cycle by cycle and checks that
// it keeps its handshake contract.
//
// A Bench is a ticking component that owns one buffer, a Producer, a Consumer,
// and a Scoreboard. Every cycle it reads the buffer's registered outputs, asks
// the producer and the consumer what to drive, ticks the buffer, checks the
// result, and publishes a Sample through HookPosSample. Tracers, recorders,
// and scenario expectations all listen on that hook.
//
// Scenarios are small YAML scripts that say, step by step, what to drive and
// what the outputs must read. The built-in ones live in scenarios/.
package verification
