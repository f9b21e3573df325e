package registry

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Number holds a numeric payload field exactly as the client sent it.
// Clients may send JSON numbers or numeric strings; Int does the parsing.
type Number struct {
	raw     []byte
	present bool
}

// RawNumber builds a Number from a JSON literal such as `12` or `"12"`.
func RawNumber(literal string) Number {
	return Number{raw: []byte(literal), present: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	n.raw = append(n.raw[:0], b...)
	n.present = true
	return nil
}

// Int parses the field. Missing, null, boolean, blank, fractional,
// non-finite and out-of-range values report ok == false.
func (n Number) Int() (v int, ok bool) {
	if !n.present {
		return 0, false
	}
	raw := bytes.TrimSpace(n.raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Payload is the request body accepted by insert and update.
type Payload struct {
	Name      string `json:"name"`
	Year      Number `json:"year"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	Publisher string `json:"publisher"`
	PageCount Number `json:"pageCount"`
	ReadPage  Number `json:"readPage"`
	Reading   bool   `json:"reading"`
}

type fields struct {
	name      string
	year      int
	author    string
	summary   string
	publisher string
	pageCount int
	readPage  int
	reading   bool
}

// validate turns a raw payload into typed fields. The order of the checks is
// part of the API contract: the first failure is the one reported.
func (p *Payload) validate(op Op) (fields, error) {
	if p == nil {
		return fields{}, invalid(op, ReasonMissingPayload)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fields{}, invalid(op, ReasonMissingName)
	}
	year, ok := p.Year.Int()
	if !ok {
		return fields{}, invalid(op, ReasonYearNotNumber)
	}
	pageCount, ok := p.PageCount.Int()
	if !ok {
		return fields{}, invalid(op, ReasonPageCountNotNumber)
	}
	readPage, ok := p.ReadPage.Int()
	if !ok {
		return fields{}, invalid(op, ReasonReadPageNotNumber)
	}
	if readPage > pageCount {
		return fields{}, invalid(op, ReasonReadPageExceedsPageCount)
	}
	if pageCount < 0 || readPage < 0 {
		return fields{}, invalid(op, ReasonNegativePages)
	}
	return fields{
		name:      p.Name,
		year:      year,
		author:    p.Author,
		summary:   p.Summary,
		publisher: p.Publisher,
		pageCount: pageCount,
		readPage:  readPage,
		reading:   p.Reading,
	}, nil
}
