// Package entities provides the core domain types of the bridge.
// These are plain data types shared by the host runtime, the bridge and the
// guest SDK. Several of them double as JSON/YAML wire and config formats.
package entities
