package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worksession-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

// employeeIDFromContext reads the authenticated employee from the verified token.
func employeeIDFromContext(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", auth.ErrInvalidToken
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", auth.ErrEmployeeIDRequired
	}
	return employeeID, nil
}

func optionalQuery(r *http.Request, key string) *string {
	if value := r.URL.Query().Get(key); value != "" {
		return &value
	}
	return nil
}

// queryInts parses the named integer query parameters; absent ones stay nil.
func queryInts(r *http.Request, keys ...string) (map[string]*int, error) {
	values := make(map[string]*int, len(keys))
	var errs validator.ValidationErrors

	for _, key := range keys {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			values[key] = nil
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: key, Message: "must be an integer"})
			continue
		}
		values[key] = &n
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
