package routes

import (
	"context"
	"encoding/json"
	"net/http"

	"chatline/chatline/config"
	"chatline/chatline/controllers"
	"chatline/chatline/middlewares"
	"chatline/chatline/utils/logging"
	"chatline/chatline/ws"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func ChatRoutes(ctrl *controllers.MessageController, hub *ws.Hub, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))
		// GET /chat/messages : full history, id ascending
		gr.Get("/messages", func(w http.ResponseWriter, r *http.Request) {
			msgs, err := ctrl.History(r.Context())
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(msgs)
		})
	})

	// GET /chat/ws?token=... : the persistent channel. The token travels as
	// a query parameter because browsers cannot set headers on a WebSocket
	// handshake.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		username, err := middlewares.ParseToken(r.URL.Query().Get("token"), cfg)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}

		client := ws.NewClient(hub, conn, username)
		hub.Register(client)

		// Hydrate the late joiner with everything the log holds.
		if msgs, err := ctrl.History(r.Context()); err == nil {
			client.Send(ws.EventHistory, msgs)
		} else {
			logging.ErrorLogger.Error("history hydration failed",
				zap.String("username", username), zap.Error(err))
		}

		// The pumps outlive the request context; the read loop blocks this
		// handler until the connection drops and unregisters the client.
		ctx := context.Background()
		go client.WriteLoop(ctx)
		client.ReadLoop(ctx)
	})

	return r
}
