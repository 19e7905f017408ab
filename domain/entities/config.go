package entities

import (
	"os"
)

// DefaultMaxPayloadSize limits a single port payload in either direction (64 MiB).
const DefaultMaxPayloadSize uint32 = 64 * 1024 * 1024

// InputBinding maps an inbound port to the file whose contents feed it.
type InputBinding struct {
	Port PortName `yaml:"port" json:"port" validate:"required" jsonschema:"description=Inbound port receiving the file contents"`
	Path string   `yaml:"path" json:"path" validate:"required" jsonschema:"description=File read once at startup"`
}

// OutputBinding maps an outbound port to the file each emission overwrites.
type OutputBinding struct {
	Port PortName `yaml:"port" json:"port" validate:"required" jsonschema:"description=Outbound port whose payloads are persisted"`
	Path string   `yaml:"path" json:"path" validate:"required" jsonschema:"description=File overwritten on every emission"`
}

// BridgeConfig holds everything the host needs to run a Computation Unit.
// The zero value is not useful; start from DefaultConfig.
type BridgeConfig struct {
	// Module is the path to the compiled unit (.wasm).
	Module string `yaml:"module" json:"module" validate:"required" jsonschema:"description=Path to the compiled unit module"`

	// BaseDir anchors relative input and output paths. Empty means the working directory.
	BaseDir string `yaml:"base_dir,omitempty" json:"base_dir,omitempty"`

	// LogLevel is the logging verbosity ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`

	Inputs  []InputBinding  `yaml:"inputs" json:"inputs" validate:"unique=Port,dive"`
	Outputs []OutputBinding `yaml:"outputs" json:"outputs" validate:"unique=Port,dive"`

	// QueueSize bounds the number of pending writes per output file.
	QueueSize int `yaml:"queue_size" json:"queue_size" validate:"gte=1" jsonschema:"minimum=1"`

	// FileMode is the permission used when creating output files.
	FileMode os.FileMode `yaml:"file_mode" json:"file_mode" validate:"lte=511"`

	// Watch re-sends an input whenever its file changes, until the host stops.
	Watch bool `yaml:"watch" json:"watch"`

	// LogPayloads logs every outbound payload before it is written.
	LogPayloads bool `yaml:"log_payloads" json:"log_payloads"`

	// MaxPayloadSize caps a payload copied into or out of a compiled unit.
	// An input file larger than this cannot be delivered and stops the run.
	MaxPayloadSize uint32 `yaml:"max_payload_size" json:"max_payload_size" validate:"gte=1" jsonschema:"minimum=1,description=Largest payload in bytes passed to or from a compiled unit"`
}

// DefaultConfig returns the ledger wiring: three CSV inputs under data/ and
// four output files in the working directory.
func DefaultConfig() BridgeConfig {
	return BridgeConfig{
		Module:   "app.wasm",
		LogLevel: "info",
		Inputs: []InputBinding{
			{Port: PortCustData, Path: "data/cust.csv"},
			{Port: PortAccData, Path: "data/acc.csv"},
			{Port: PortTxnData, Path: "data/txn.csv"},
		},
		Outputs: []OutputBinding{
			{Port: PortUserFile, Path: "users.json"},
			{Port: PortAccountFile, Path: "accounts.json"},
			{Port: PortTxFile, Path: "batch.json"},
			{Port: PortUserIDsFile, Path: "cins.txt"},
		},
		QueueSize:      16,
		FileMode:       0o644,
		LogPayloads:    true,
		MaxPayloadSize: DefaultMaxPayloadSize,
	}
}

// ConfigOption is a functional option for configuring the bridge.
type ConfigOption func(*BridgeConfig)

// WithModule sets the compiled unit path.
func WithModule(path string) ConfigOption {
	return func(c *BridgeConfig) {
		if path != "" {
			c.Module = path
		}
	}
}

// WithBaseDir sets the directory relative paths resolve against.
func WithBaseDir(dir string) ConfigOption {
	return func(c *BridgeConfig) {
		c.BaseDir = dir
	}
}

// WithInputs replaces the input bindings.
func WithInputs(bindings ...InputBinding) ConfigOption {
	return func(c *BridgeConfig) {
		c.Inputs = bindings
	}
}

// WithOutputs replaces the output bindings.
func WithOutputs(bindings ...OutputBinding) ConfigOption {
	return func(c *BridgeConfig) {
		c.Outputs = bindings
	}
}

// WithQueueSize sets the per-file write queue depth. Non-positive values are ignored.
func WithQueueSize(n int) ConfigOption {
	return func(c *BridgeConfig) {
		if n > 0 {
			c.QueueSize = n
		}
	}
}

// WithWatch enables or disables re-delivery of changed inputs.
func WithWatch(enabled bool) ConfigOption {
	return func(c *BridgeConfig) {
		c.Watch = enabled
	}
}

// WithLogLevel sets the logging verbosity level.
func WithLogLevel(level string) ConfigOption {
	return func(c *BridgeConfig) {
		c.LogLevel = level
	}
}

// WithLogPayloads toggles logging of outbound payloads.
func WithLogPayloads(enabled bool) ConfigOption {
	return func(c *BridgeConfig) {
		c.LogPayloads = enabled
	}
}

// WithMaxPayloadSize sets the payload cap for compiled units. Zero is ignored.
func WithMaxPayloadSize(n uint32) ConfigOption {
	return func(c *BridgeConfig) {
		if n > 0 {
			c.MaxPayloadSize = n
		}
	}
}

// NewConfig creates a BridgeConfig from the defaults and the given options.
func NewConfig(opts ...ConfigOption) BridgeConfig {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Apply applies options to an existing config, e.g. after loading a file.
func (c *BridgeConfig) Apply(opts ...ConfigOption) {
	for _, opt := range opts {
		opt(c)
	}
}
