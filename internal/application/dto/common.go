package dto

// ErrorResponse cuerpo de error HTTP. Code es el código estable de domain.Code.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details datos estructurados del error (restricción, cantidad restante...).
	Details map[string]any `json:"details,omitempty"`
}
