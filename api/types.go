package api

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler   projectHandler
	blogPostHandler  blogPostHandler
	techHandler      techHandler
	highlightHandler highlightHandler
	siteHandler      siteHandler
	contactHandler   contactHandler
	mediaHandler     mediaHandler
	tokenHandler     tokenHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string            `json:"error" example:"validation failed"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"title"`
	Fields  map[string]string `json:"fields,omitempty"`
	Details string            `json:"details,omitempty" example:"invalid fields: title"`
}

type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
