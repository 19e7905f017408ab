package ports

// TemplateEngine renders a config file before it is parsed.
type TemplateEngine interface {
	// Render executes raw as a template. vars are reachable as {{.env.NAME}}.
	Render(raw []byte, vars map[string]string) ([]byte, error)
}
