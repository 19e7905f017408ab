package parser_test

import (
	"testing"

	"github.com/reglet-dev/portbridge/domain/entities"
	"github.com/reglet-dev/portbridge/infrastructure/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYamlConfigParser_Parse(t *testing.T) {
	t.Run("overlays defaults", func(t *testing.T) {
		cfg := entities.DefaultConfig()
		data := []byte(`
module: build/ledger.wasm
base_dir: /srv/ledger
watch: true
`)
		require.NoError(t, parser.NewYamlConfigParser().Parse(data, &cfg))

		assert.Equal(t, "build/ledger.wasm", cfg.Module)
		assert.Equal(t, "/srv/ledger", cfg.BaseDir)
		assert.True(t, cfg.Watch)
		// untouched keys keep their defaults
		assert.Equal(t, entities.DefaultConfig().Inputs, cfg.Inputs)
		assert.Equal(t, 16, cfg.QueueSize)
	})

	t.Run("lists replace defaults", func(t *testing.T) {
		cfg := entities.DefaultConfig()
		data := []byte(`
outputs:
  - port: userFilePort
    path: out/users.json
`)
		require.NoError(t, parser.NewYamlConfigParser().Parse(data, &cfg))

		require.Len(t, cfg.Outputs, 1)
		assert.Equal(t, entities.OutputBinding{Port: entities.PortUserFile, Path: "out/users.json"}, cfg.Outputs[0])
	})

	t.Run("empty document", func(t *testing.T) {
		cfg := entities.DefaultConfig()
		require.NoError(t, parser.NewYamlConfigParser().Parse(nil, &cfg))
		assert.Equal(t, entities.DefaultConfig(), cfg)
	})

	t.Run("unknown key rejected in strict mode", func(t *testing.T) {
		cfg := entities.DefaultConfig()
		err := parser.NewYamlConfigParser().Parse([]byte("modul: typo.wasm\n"), &cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config")
	})

	t.Run("unknown key ignored when lenient", func(t *testing.T) {
		cfg := entities.DefaultConfig()
		p := parser.NewYamlConfigParser(parser.WithStrict(false))
		require.NoError(t, p.Parse([]byte("modul: typo.wasm\n"), &cfg))
		assert.Equal(t, "app.wasm", cfg.Module)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		cfg := entities.DefaultConfig()
		err := parser.NewYamlConfigParser().Parse([]byte("inputs: [unterminated"), &cfg)
		require.Error(t, err)
	})

	t.Run("nil base", func(t *testing.T) {
		err := parser.NewYamlConfigParser().Parse([]byte("watch: true"), nil)
		require.Error(t, err)
	})
}
