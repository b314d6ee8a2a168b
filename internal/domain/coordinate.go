package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// coordinateRe parses a JMA coordinate string: latitude (2 integer digits),
// longitude (3 integer digits), then everything up to the last slash as depth,
// e.g. "+36.1+140.7-30000/" -> "+36.1", "+140.7", "-30000".
var coordinateRe = regexp.MustCompile(`^([+-]\d{2}\.\d+)([+-]\d{3}\.\d+)(.*)/`)

// decimalRe limits captures to plain decimal notation. strconv.ParseFloat alone
// would also take "NaN", "Inf", hex floats, and underscores.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseCoordinates splits a coordinate string into a CoordinateTriple. It never
// panics or returns an error: a format mismatch and a numeric conversion failure
// are reported separately to r and yield ok == false. No unit conversion is done.
func ParseCoordinates(s string, r Reporter) (CoordinateTriple, bool) {
	m := coordinateRe.FindStringSubmatch(s)
	if m == nil {
		r.Report("Invalid coordinate string format", "input", s)
		return CoordinateTriple{}, false
	}

	triple, err := convertCaptures(m[1], m[2], m[3])
	if err != nil {
		r.Report("Failed to parse coordinates", "input", s, "error", err)
		return CoordinateTriple{}, false
	}
	return triple, true
}

func convertCaptures(lat, lon, depth string) (CoordinateTriple, error) {
	la, err := parseDecimal(lat)
	if err != nil {
		return CoordinateTriple{}, fmt.Errorf("latitude: %w", err)
	}
	lo, err := parseDecimal(lon)
	if err != nil {
		return CoordinateTriple{}, fmt.Errorf("longitude: %w", err)
	}
	d, err := parseDecimal(depth)
	if err != nil {
		return CoordinateTriple{}, fmt.Errorf("depth: %w", err)
	}
	return CoordinateTriple{Latitude: la, Longitude: lo, RawDepth: d}, nil
}

// parseDecimal converts a finite decimal number. Anything else fails with a
// *strconv.NumError, matching what ParseFloat returns for malformed input.
func parseDecimal(s string) (float64, error) {
	if !decimalRe.MatchString(s) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrRange}
	}
	return v, nil
}
