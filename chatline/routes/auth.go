package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatline/chatline/config"
	"chatline/chatline/controllers"
	"chatline/chatline/utils/types"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(ctrl *controllers.AuthController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	// POST /auth/login : binary credential match -> JWT
	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		token, err := ctrl.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, controllers.ErrInvalidCredentials) {
				http.Error(w, "Invalid username or password.", http.StatusUnauthorized)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(types.LoginResponse{Token: token, Username: req.Username})
	})

	// GET /auth/users : usernames and avatars for the chat page
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ctrl.Users())
	})

	return r
}
