package models

import "encoding/json"

// FieldError is one structured validation message inside an error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the response convention of the backend:
// { success, data, message?, errors? }. Data is kept raw because its shape
// varies per endpoint (bare entity, array, or nested {items, pagination}).
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

// ErrorText joins the structured field messages into one readable string,
// falling back to the envelope message when no field errors are present.
func (e *Envelope) ErrorText() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	out := ""
	for i, fe := range e.Errors {
		if i > 0 {
			out += ", "
		}
		out += fe.Message
	}
	return out
}
