package handler

import (
	"dmchat/internal/app/auth"
	"dmchat/internal/app/chat"
	"dmchat/internal/app/presence"
	"dmchat/internal/app/storage"
	"dmchat/internal/app/store"
	"dmchat/internal/configs"
	"dmchat/internal/pkg/auth/jwt"
	"dmchat/internal/pkg/pow"
)

// AppDeps carries the long-lived services handlers depend on.
type AppDeps struct {
	Config *configs.AppConfig
	Store  store.Store
	Tokens *jwt.TokenService
	Guard  *auth.Guard

	Registry   *presence.Registry
	Hub        *chat.Hub
	Dispatcher *chat.Dispatcher

	// Storage is nil when image uploads are not configured.
	Storage storage.StorageService

	Pow *pow.PoWManager
}

// secureCookies reports whether the credential cookie must be HTTPS-only.
func (d *AppDeps) secureCookies() bool {
	return !d.Config.IsDevelopment()
}
