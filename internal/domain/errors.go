package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the pipeline reports. Errors are
// attached to the property (or property/adult-count) they concern and never
// abort sibling work.
type ErrorKind string

const (
	KindMissingURL     ErrorKind = "missing_url"     // no address to fetch
	KindFetchError     ErrorKind = "fetch_error"     // non-2xx landing page
	KindTransportError ErrorKind = "transport_error" // non-2xx availability call
	KindSchemaError    ErrorKind = "schema_error"    // response missing the expected envelope
	KindQueryError     ErrorKind = "query_error"     // any other transport/parse failure
	KindNoValidPrices  ErrorKind = "no_valid_prices" // all day entries filtered out
)

// RateError is a classified pipeline failure. Status carries the remote
// HTTP status for the kinds that have one.
type RateError struct {
	Kind   ErrorKind
	Status int
	Msg    string
	Err    error
}

func (e *RateError) Error() string {
	switch {
	case e.Status != 0 && e.Msg != "":
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Msg)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return string(e.Kind)
}

func (e *RateError) Unwrap() error { return e.Err }

// AsRateError coerces err into a *RateError. Errors without a classification
// become QueryError, the catch-all of the taxonomy.
func AsRateError(err error) *RateError {
	if err == nil {
		return nil
	}
	var re *RateError
	if errors.As(err, &re) {
		return re
	}
	return &RateError{Kind: KindQueryError, Msg: err.Error(), Err: err}
}
