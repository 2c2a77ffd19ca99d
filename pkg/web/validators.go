package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// Between returns a ParamValidator accepting values in [lo, hi].
func Between(lo, hi int64) ParamValidator {
	gteLo := newComparisonValidator(lo, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
	lteHi := newComparisonValidator(hi, func(argValue, closedValue int64) bool {
		return argValue <= closedValue
	})
	return func(v int64) bool { return gteLo(v) && lteHi(v) }
}

// Gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func Gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// ParseQueryInt reads an integer query parameter, falling back to def when it is absent.
// Present but invalid values produce a 400 response and false.
func ParseQueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int64, pValidator ParamValidator) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !pValidator(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// ParsePathInt reads an integer chi URL parameter that must satisfy pValidator.
func ParsePathInt(w http.ResponseWriter, logger *slog.Logger, raw, name string, pValidator ParamValidator) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !pValidator(id) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", name, raw))
		return 0, false
	}
	return id, true
}
