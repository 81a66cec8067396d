package http

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"

	KEY_HEADER_REQUEST_ID = "X-Request-Id"
	KEY_HEADER_CSRF_TOKEN = "X-CSRF-Token"
)
