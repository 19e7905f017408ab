package entities

// ValidationResult represents the outcome of a config validation.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a specific validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
