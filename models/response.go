package models

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse acknowledges webhook deliveries.
type StatusResponse struct {
	Status string `json:"status"`
}
