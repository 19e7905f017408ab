package template_test

import (
	"testing"

	"github.com/reglet-dev/portbridge/application/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoTemplateEngine_Render(t *testing.T) {
	engine := template.NewGoTemplateEngine()

	t.Run("Successful Resolution", func(t *testing.T) {
		raw := []byte(`base_dir: "{{.env.LEDGER_DIR}}"` + "\n" + `queue_size: 4`)
		out, err := engine.Render(raw, map[string]string{"LEDGER_DIR": "/srv/ledger"})
		require.NoError(t, err)
		assert.Equal(t, "base_dir: \"/srv/ledger\"\nqueue_size: 4", string(out))
	})

	t.Run("Plain YAML passes through", func(t *testing.T) {
		raw := []byte("watch: true\n")
		out, err := engine.Render(raw, nil)
		require.NoError(t, err)
		assert.Equal(t, raw, out)
	})

	t.Run("Missing Key Fails", func(t *testing.T) {
		_, err := engine.Render([]byte(`module: "{{.env.MISSING}}"`), map[string]string{"OTHER": "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "map has no entry for key")
	})

	t.Run("Invalid Template Syntax", func(t *testing.T) {
		_, err := engine.Render([]byte(`module: "{{.env.X"`), nil)
		require.Error(t, err)
	})
}

func TestGoTemplateEngine_Lenient(t *testing.T) {
	engine := template.NewGoTemplateEngine(template.WithStrict(false))

	out, err := engine.Render([]byte(`module: "{{.env.MISSING}}"`), map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, `module: ""`, string(out))
}
