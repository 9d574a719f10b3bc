/*
Package store holds the application state tree and the only code allowed
to change it.

# Overview

  - State is a plain value. Reduce(State, Action) returns a new State and
    never mutates its input.
  - Every action is its own Go type; ActionType returns the stable
    SCREAMING_CASE name used in logs.
  - Store serializes all writes through one goroutine consuming a queue.
    Dispatch may be called from any goroutine; ordering is queue order and
    the last write wins.

# Effects

Side effects that depend on the reduced state (theme persistence,
notification logging) are registered as Effects and run on the writer
goroutine right after reduction. The reducer itself stays pure.

# Subscribing

Subscribe returns a channel that always holds the most recent state. The
TUI turns it into tea messages; the CLI uses Sync and State instead.
*/
package store
