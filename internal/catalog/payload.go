package catalog

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"argip-api/internal/apperr"
	"argip-api/internal/models"
)

// maxPrice is the first value that no longer fits DECIMAL(10,2).
var maxPrice = decimal.New(1, 8)

type RangeRequest struct {
	Nazwa *string  `json:"nazwa" validate:"required,max=100"`
	Od    *float64 `json:"od" validate:"required"`
	Do    *float64 `json:"do" validate:"required"`
}

func (req RangeRequest) Input() RangeInput {
	return RangeInput{Nazwa: *req.Nazwa, Od: *req.Od, Do: *req.Do}
}

// RangeUpdateRequest is a partial update; absent or null fields keep their value.
type RangeUpdateRequest struct {
	Nazwa *string  `json:"nazwa" validate:"omitempty,max=100"`
	Od    *float64 `json:"od"`
	Do    *float64 `json:"do"`
}

func (req RangeUpdateRequest) Patch() RangePatch {
	return RangePatch{Nazwa: req.Nazwa, Od: req.Od, Do: req.Do}
}

type NutRequest struct {
	IDZakresu *int64        `json:"id_zakresu" validate:"required,gt=0"`
	Nazwa     *string       `json:"nazwa" validate:"required,max=100"`
	Srednica  *float64      `json:"srednica" validate:"required"`
	Cena      *models.Price `json:"cena" validate:"required"`
}

func (req NutRequest) Input() (NutInput, error) {
	if err := checkPrice(*req.Cena); err != nil {
		return NutInput{}, err
	}
	return NutInput{
		IDZakresu: uint(*req.IDZakresu),
		Nazwa:     *req.Nazwa,
		Srednica:  *req.Srednica,
		Cena:      models.NewPrice(req.Cena.Decimal),
	}, nil
}

type NutUpdateRequest struct {
	IDZakresu *int64        `json:"id_zakresu" validate:"omitempty,gt=0"`
	Nazwa     *string       `json:"nazwa" validate:"omitempty,max=100"`
	Srednica  *float64      `json:"srednica"`
	Cena      *models.Price `json:"cena"`
}

func (req NutUpdateRequest) Patch() (NutPatch, error) {
	p := NutPatch{Nazwa: req.Nazwa, Srednica: req.Srednica}
	if req.IDZakresu != nil {
		id := uint(*req.IDZakresu)
		p.IDZakresu = &id
	}
	if req.Cena != nil {
		if err := checkPrice(*req.Cena); err != nil {
			return NutPatch{}, err
		}
		cena := models.NewPrice(req.Cena.Decimal)
		p.Cena = &cena
	}
	return p, nil
}

type ScrewLengthRequest struct {
	Srednica *float64 `json:"srednica" validate:"required"`
	Dlugosc  *float64 `json:"dlugosc" validate:"required"`
}

func (req ScrewLengthRequest) Input() ScrewLengthInput {
	return ScrewLengthInput{Srednica: *req.Srednica, Dlugosc: *req.Dlugosc}
}

// checkPrice enforces NUMERIC(10,2): two fractional digits, eight integer digits.
func checkPrice(p models.Price) error {
	if !p.Equal(p.Round(models.PriceScale)) {
		return apperr.Validation(fmt.Sprintf("Field 'cena' must have at most %d decimal places", models.PriceScale))
	}
	if p.Abs().GreaterThanOrEqual(maxPrice) {
		return apperr.Validation("Field 'cena' must have at most 8 digits before the decimal point")
	}
	return nil
}

// pathID reads a positive integer path variable.
func pathID(r *http.Request, name string) (uint, error) {
	return parseID(mux.Vars(r)[name], name)
}

func parseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("Parameter '%s' must be a positive integer", name))
	}
	return uint(id), nil
}

// rangeFilter reads the optional range_id query parameter.
func rangeFilter(r *http.Request) (*uint, error) {
	raw := r.URL.Query().Get("range_id")
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(raw, "range_id")
	if err != nil {
		return nil, err
	}
	return &id, nil
}
