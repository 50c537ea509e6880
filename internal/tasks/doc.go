// Package tasks holds the units of work the pipelines schedule. Each task
// reads from the project tree, delegates the transformation to an engine in
// package transform, and writes back to the tree. Tasks never pass state to
// each other in memory.
//
// Every task has the same shape:
//
//	Name() string
//	Run(ctx context.Context, m mode.Mode) error
//
// The mode selects the dev or build branch of tasks that have one. Tasks are
// safe to run repeatedly; the dev server re-runs Style and Script on change.
package tasks
