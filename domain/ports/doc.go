// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - the bridge depends on abstractions,
// and infrastructure adapters (wasm runtime, filesystem, config parser) implement them.
package ports
