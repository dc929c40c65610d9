// Package platform defines the hardware capability interface consumed by
// the flash lifecycle manager, plus an in-memory simulator for tests and
// examples.
//
// # Hardware Independence
//
// The manager in package flash depends only on the Ops interface. A port
// to a new microcontroller family is a single Ops implementation wrapping
// that family's HAL calls (unlock/lock sequences, page erase, word or
// double-word programming, peripheral teardown); nothing in the manager
// changes.
//
// # Simulator
//
// Simulator implements Ops over a byte slice with NOR-style write
// semantics: programming can only clear bits, so writing over memory that
// was not erased first fails its readback verification exactly like real
// flash would. It also counts unlock/lock/erase/write calls and supports
// fault injection, which the manager's test suite relies on.
package platform
