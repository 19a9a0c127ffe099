// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock exposes function fields that tests can
// set to override behavior; unset fields fall back to a simple in-memory
// default implementation.
package mocks
