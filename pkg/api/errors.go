package api

import (
	"errors"
	"net/http"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

type errorResponse struct {
	Error string `json:"error"`

	// Set for formula errors
	Formula  string `json:"formula,omitempty"`
	Position *int   `json:"position,omitempty"`
	Symbol   string `json:"symbol,omitempty"`

	// Set for removal errors
	Requested int  `json:"requested,omitempty"`
	Available *int `json:"available,omitempty"`
}

func newErrResp(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// errorFor maps a core error to a status code and body. Charge state errors
// are well-formed requests that cannot be satisfied; everything else is a bad request.
func errorFor(err error) (int, errorResponse) {
	resp := newErrResp(err.Error())

	var ferr *core.FormulaError
	if errors.As(err, &ferr) {
		resp.Formula = ferr.Formula
		resp.Symbol = ferr.Symbol
		if ferr.Pos >= 0 {
			pos := ferr.Pos
			resp.Position = &pos
		}
	}

	var rerr *core.RemovalError
	if errors.As(err, &rerr) {
		resp.Formula = rerr.Formula
		resp.Symbol = rerr.Symbol
		resp.Requested = rerr.Requested
		available := rerr.Available
		resp.Available = &available
	}

	if errors.Is(err, core.ErrChargeState) {
		return http.StatusUnprocessableEntity, resp
	}
	return http.StatusBadRequest, resp
}

func respondErr(w http.ResponseWriter, err error) {
	code, resp := errorFor(err)
	respond(w, code, resp)
}
