package types

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StatusResponse is the plain acknowledgement used by the auth flow.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageResponse is a bare greeting/notice.
type MessageResponse struct {
	Message string `json:"message"`
}
