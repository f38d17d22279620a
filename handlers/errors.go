package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"roadworks/services"
)

// errorKind names one row of the error taxonomy for status mapping.
type errorKind string

const (
	kindValidation  errorKind = "validation"
	kindNotFound    errorKind = "not_found"
	kindConstraint  errorKind = "constraint"
	kindTransaction errorKind = "transaction"
	kindInternal    errorKind = "internal"
)

// statusTable is the single mapping from the error taxonomy to HTTP status
// codes; every handler routes service errors through it instead of picking
// codes ad hoc.
var statusTable = map[errorKind]int{
	kindValidation:  http.StatusBadRequest,
	kindNotFound:    http.StatusNotFound,
	kindConstraint:  http.StatusUnprocessableEntity,
	kindTransaction: http.StatusConflict,
	kindInternal:    http.StatusInternalServerError,
}

func kindOf(err error) errorKind {
	var txErr *services.TransactionError
	switch {
	case services.IsValidation(err):
		return kindValidation
	case services.IsNotFound(err):
		return kindNotFound
	case services.IsConstraint(err):
		return kindConstraint
	case errors.As(err, &txErr):
		return kindTransaction
	default:
		return kindInternal
	}
}

// StatusOf maps a service error to its HTTP status code.
func StatusOf(err error) int {
	return statusTable[kindOf(err)]
}

// respondError logs the failure and writes its mapped status with the error
// message as plain text. Internal errors keep their detail out of the
// response body.
func respondError(e *core.RequestEvent, op string, err error) error {
	kind := kindOf(err)
	log.Printf("%s: %v", op, err)
	if kind == kindInternal {
		return e.String(http.StatusInternalServerError, "Internal error")
	}
	return e.String(statusTable[kind], err.Error())
}
