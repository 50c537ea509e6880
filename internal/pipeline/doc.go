// Package pipeline executes assetflow's stage graphs.
//
// A pipeline is an ordered list of stages. A stage either runs a group of
// tasks concurrently behind an errgroup barrier or switches the mode the
// following stages see. The dev pipeline ends in the long-running watch
// stage; the build pipeline switches to Build once and produces dist.
package pipeline
