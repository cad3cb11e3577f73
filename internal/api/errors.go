package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/propledger/internal/model"
)

type errorBody struct {
	Error   string        `json:"error"`
	Code    string        `json:"code,omitempty"`
	Details []errorDetail `json:"details,omitempty"`
}

type errorDetail struct {
	Code    string           `json:"code"`
	Entry   *int             `json:"entry,omitempty"`
	Message string           `json:"message"`
	Debits  *decimal.Decimal `json:"debits,omitempty"`
	Credits *decimal.Decimal `json:"credits,omitempty"`
}

// conflictCodes are rejections caused by existing state rather than the
// request body.
var conflictCodes = map[model.Code]bool{
	model.CodeDuplicateName: true,
	model.CodeAccountInUse:  true,
	model.CodeTypeInUse:     true,
	model.CodeUnitInUse:     true,
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	if verrs, ok := model.AsValidation(err); ok {
		for _, ve := range verrs {
			if conflictCodes[ve.Code] {
				return http.StatusConflict
			}
		}
		return http.StatusBadRequest
	}
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func bodyFor(err error, status int) errorBody {
	if verrs, ok := model.AsValidation(err); ok {
		body := errorBody{Error: verrs.Error(), Code: string(verrs[0].Code)}
		for _, ve := range verrs {
			d := errorDetail{Code: string(ve.Code), Message: ve.Description}
			if ve.Entry >= 0 {
				entry := ve.Entry
				d.Entry = &entry
			}
			if ve.Code == model.CodeUnbalanced {
				debits, credits := ve.Debits, ve.Credits
				d.Debits, d.Credits = &debits, &credits
			}
			body.Details = append(body.Details, d)
		}
		return body
	}
	switch status {
	case http.StatusNotFound:
		return errorBody{Error: err.Error(), Code: "NotFound"}
	case http.StatusServiceUnavailable:
		return errorBody{Error: "ledger storage unavailable", Code: "Unavailable"}
	default:
		return errorBody{Error: "internal error"}
	}
}

// fail writes err as a JSON error response.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, bodyFor(err, status))
}

func badRequest(format string, args ...any) error {
	return model.Invalid(model.CodeInvalidRequest, format, args...)
}
