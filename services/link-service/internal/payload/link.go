package payload

import "github.com/vasapolrittideah/linkbridge/shared/validation"

type LinkRequest struct {
	Identity string `json:"identity" validate:"required,max=128"`
	Code     string `json:"code"     validate:"required,max=64"`
}

type ReconcileRequest struct {
	Identity string `json:"identity" validate:"required,max=128"`
}

// OutcomeResponse is returned for every link and reconcile request the core answered.
type OutcomeResponse struct {
	Outcome string `json:"outcome"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}
