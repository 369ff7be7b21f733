// Package service runs long-lived subsystems (terminal, bell, sampler, metrics)
// through a shared lifecycle ordered by their dependencies.
package service

// Service is one long-lived subsystem.
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - acquire resources; dependencies are already initialized
//  3. Start() - launch goroutines
//  4. Stop() - halt goroutines and release resources; idempotent
type Service interface {
	// Name is unique within a Hub
	Name() string

	// Dependencies names services that must Init and Start first
	Dependencies() []string

	Init(args ...any) error
	Start() error
	Stop() error
}
