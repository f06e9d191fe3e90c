package spaapi

import (
    "errors"
    "fmt"
    "net/http"
)

// APIError is returned for every non-2xx backend response.
type APIError struct {
    Operation string
    Status    int
    Message   string
}

func (e *APIError) Error() string {
    return fmt.Sprintf("%s: backend returned %d: %s", e.Operation, e.Status, e.Message)
}

// IsClientError reports whether err is a 4xx backend rejection, as opposed
// to a 5xx or a transport failure.
func IsClientError(err error) bool {
    var apiErr *APIError
    return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

// IsNotFound reports whether err is a 404 backend response.
func IsNotFound(err error) bool {
    var apiErr *APIError
    return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsCardDecline reports whether err is the backend refusing a card charge
// (bad card data, insufficient funds, fraud rules), as opposed to a
// problem with the appointment itself such as 404 or 409.
func IsCardDecline(err error) bool {
    var apiErr *APIError
    if !errors.As(err, &apiErr) {
        return false
    }
    switch apiErr.Status {
    case http.StatusBadRequest, http.StatusPaymentRequired, http.StatusUnprocessableEntity:
        return true
    }
    return false
}
