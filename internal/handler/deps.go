package handler

import (
	"pulsechat/internal/app/chat"
	"pulsechat/internal/configs"
)

// AppDeps bundles the shared dependencies handed to the HTTP handlers.
type AppDeps struct {
	// Config holds the application's read-only configuration settings.
	Config *configs.AppConfig

	// Gateway tracks live WebSocket connections.
	Gateway *chat.Gateway

	// Router routes inbound chat events.
	Router *chat.Router
}
