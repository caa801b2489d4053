package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired accepts only verified access tokens that name an employee.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			employeeID, ok := claims["employee_id"].(string)
			if !ok || employeeID == "" {
				response.HandleError(w, auth.ErrEmployeeIDRequired)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}
