package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/worksession-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worksession-backend-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrManagerAccessRequired)
			return
		}

		role, ok := claims["role"].(string)
		if !ok || !auth.Role(role).CanManage() {
			response.HandleError(w, auth.ErrManagerAccessRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
