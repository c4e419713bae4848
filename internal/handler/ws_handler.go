/*
Package handler provides the HTTP handlers and routing setup for the pulsechat server.

This file contains the HandleWebSocket function, which is responsible for rate
limiting, upgrading the HTTP connection to WebSocket, assigning the opaque
connection id, and running the client lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"pulsechat/internal/app/chat"
	"pulsechat/internal/pkg/errs"
	"pulsechat/internal/pkg/limiter"
	"pulsechat/internal/pkg/logx"
	"pulsechat/internal/pkg/randx"
	"pulsechat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, connLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)

		if !connLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		client := chat.NewClient(connID, conn, deps.Gateway, deps.Router)

		// The client must be registered before the connect event is routed so
		// the handshake deliveries (set_username, message_history) reach it.
		deps.Gateway.Add(client)

		go client.WritePump()

		deps.Router.OnConnect(connID)

		logx.Info("WebSocket connection established", "conn_id", connID)

		client.ReadPump()
	}
}
