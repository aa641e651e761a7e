package api

import (
	"fmt"
	"net/http"

	"github.com/ChrisMcGann/exactmass/pkg/calc"
	"github.com/ChrisMcGann/exactmass/pkg/core"
)

type elementResponse struct {
	Symbol string `json:"symbol"`
	Mass   string `json:"mass"`
}

func (s *Server) elementsHandler(w http.ResponseWriter, _ *http.Request) {
	symbols := core.Symbols()
	resp := make([]elementResponse, 0, len(symbols))
	for _, sym := range symbols {
		m, _ := core.MassOf(sym)
		resp = append(resp, elementResponse{Symbol: sym, Mass: m.String()})
	}
	respond(w, http.StatusOK, resp)
}

type massRequest struct {
	Formula   string `json:"formula"`
	Charge    int    `json:"charge"`
	Adduct    string `json:"adduct"`
	Add       string `json:"add"`
	Delete    string `json:"delete"`
	Precision *int32 `json:"precision"`
}

type massResponse struct {
	Formula string `json:"formula"`
	Charge  int    `json:"charge"`
	Adduct  string `json:"adduct,omitempty"`
	Mass    string `json:"mass"`
}

func (s *Server) massHandler(w http.ResponseWriter, r *http.Request) {
	// ----------------------------------------------------------------------------
	// Validate Request

	req, err := decode[massRequest](w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, newErrResp("invalid mass payload"))
		return
	}
	precision, err := s.precisionOf(req.Precision)
	if err != nil {
		respond(w, http.StatusBadRequest, newErrResp(err.Error()))
		return
	}

	// ----------------------------------------------------------------------------
	// Process Request

	c := core.NewIon(req.Formula, req.Charge, req.Adduct)
	if _, err := c.DelElements(req.Delete); err != nil {
		respondErr(w, err)
		return
	}
	if _, err := c.AddElements(req.Add); err != nil {
		respondErr(w, err)
		return
	}
	mass, err := c.CalcMass(precision)
	if err != nil {
		respondErr(w, err)
		return
	}

	// ----------------------------------------------------------------------------
	// Send Response

	respond(w, http.StatusOK, massResponse{
		Formula: c.Formula(),
		Charge:  c.Charge,
		Adduct:  c.Adduct,
		Mass:    core.FormatMass(mass, precision),
	})
}

type ionsRequest struct {
	Formula   string `json:"formula"`
	Precision *int32 `json:"precision"`
}

type ionMass struct {
	Name  string `json:"name"`
	Mass  string `json:"mass"`
	Error string `json:"error,omitempty"`
}

type ionsResponse struct {
	Formula string    `json:"formula"`
	Ions    []ionMass `json:"ions"`
}

func (s *Server) ionsHandler(w http.ResponseWriter, r *http.Request) {
	// ----------------------------------------------------------------------------
	// Validate Request

	req, err := decode[ionsRequest](w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, newErrResp("invalid ions payload"))
		return
	}
	precision, err := s.precisionOf(req.Precision)
	if err != nil {
		respond(w, http.StatusBadRequest, newErrResp(err.Error()))
		return
	}
	compound := core.NewCompound(req.Formula)
	if err := compound.Err(); err != nil {
		respondErr(w, err)
		return
	}

	// ----------------------------------------------------------------------------
	// Process Request

	// A one row table gives the same cell semantics as a calculated table.
	table := core.NewTable(s.columns)
	row := table.AddRow("", compound.Formula())
	cfg := &calc.Config{Precision: precision, Logger: s.logger}
	if _, err := cfg.Apply(r.Context(), table); err != nil {
		respond(w, http.StatusInternalServerError, newErrResp(err.Error()))
		return
	}

	resp := ionsResponse{Formula: compound.Formula()}
	for i, col := range table.Columns {
		if col.RetentionTime {
			continue
		}
		ion := ionMass{Name: col.Name, Mass: row.Cells[i]}
		switch row.Cells[i] {
		case calc.NotAvailable, calc.Failed:
			if _, err := col.Compute(compound.Formula(), precision); err != nil {
				ion.Error = err.Error()
			} else {
				ion.Error = fmt.Sprintf("%s leaves no atoms", col.Name)
			}
		}
		resp.Ions = append(resp.Ions, ion)
	}

	// ----------------------------------------------------------------------------
	// Send Response

	respond(w, http.StatusOK, resp)
}

// Combine operations
const (
	opAdd      = "add"
	opDel      = "del"
	opMultiply = "multiply"
)

type combineRequest struct {
	Formula     string  `json:"formula"`
	Other       string  `json:"other"`
	Op          string  `json:"op"`
	N           int     `json:"n"`
	Elimination *string `json:"elimination"`
	Precision   *int32  `json:"precision"`
}

type combineResponse struct {
	Formula     string `json:"formula"`
	NeutralMass string `json:"neutral_mass"`
}

func (s *Server) combineHandler(w http.ResponseWriter, r *http.Request) {
	// ----------------------------------------------------------------------------
	// Validate Request

	req, err := decode[combineRequest](w, r)
	if err != nil {
		respond(w, http.StatusBadRequest, newErrResp("invalid combine payload"))
		return
	}
	precision, err := s.precisionOf(req.Precision)
	if err != nil {
		respond(w, http.StatusBadRequest, newErrResp(err.Error()))
		return
	}
	elimination := s.eliminationOf(req.Elimination)

	// ----------------------------------------------------------------------------
	// Process Request

	c := core.NewCompound(req.Formula)
	var result *core.Compound
	switch req.Op {
	case opAdd:
		result, err = c.AddCompound(core.NewCompound(req.Other), elimination)
	case opDel:
		result, err = c.DelCompound(core.NewCompound(req.Other), elimination)
	case opMultiply:
		result, err = c.Multiply(req.N, elimination)
	default:
		respond(w, http.StatusBadRequest, newErrResp(fmt.Sprintf("op must be %s, %s or %s", opAdd, opDel, opMultiply)))
		return
	}
	if err != nil {
		respondErr(w, err)
		return
	}

	mass, err := result.CalcMass(precision)
	if err != nil {
		respondErr(w, err)
		return
	}

	// ----------------------------------------------------------------------------
	// Send Response

	respond(w, http.StatusOK, combineResponse{
		Formula:     result.Formula(),
		NeutralMass: core.FormatMass(mass, precision),
	})
}
