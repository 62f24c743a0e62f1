package server

import (
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/config"
	"github.com/johan-st/shopdash/internal/history"
	gossh "golang.org/x/crypto/ssh"
)

const ctxKeyUser ctxKey = "user"

// Authenticator handles SSH authentication.
type Authenticator struct {
	config *config.Config
	names  *history.NameGenerator
	logger *log.Logger
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(cfg *config.Config, logger *log.Logger) *Authenticator {
	return &Authenticator{
		config: cfg,
		names:  history.NewNameGenerator(),
		logger: logger,
	}
}

// PublicKeyHandler accepts configured keys as their user. Unknown keys get
// an anonymous identity when anonymous access is enabled.
func (a *Authenticator) PublicKeyHandler() ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := FingerprintKey(key)

		if u, ok := a.config.FindUserByKey(key); ok {
			ctx.SetValue(ctxKeyUser, &access.UserInfo{
				Name:        u.Name,
				IsAdmin:     u.Admin,
				PublicKeyFP: fingerprint,
				RemoteAddr:  ctx.RemoteAddr().String(),
			})
			a.logger.Info("authenticated", "user", u.Name, "remote", ctx.RemoteAddr())
			return true
		}

		if a.config.AllowsAnonymous() {
			anon := a.anonymous(ctx)
			anon.PublicKeyFP = fingerprint
			ctx.SetValue(ctxKeyUser, anon)
			a.logger.Info("anonymous access", "name", anon.AnonymousName, "remote", ctx.RemoteAddr())
			return true
		}

		a.logger.Warn("authentication failed", "key", FingerprintKeyShort(key), "remote", ctx.RemoteAddr())
		return false
	}
}

// KeyboardInteractiveHandler admits keyless clients anonymously. It is nil
// unless keyless logins are allowed.
func (a *Authenticator) KeyboardInteractiveHandler() ssh.KeyboardInteractiveHandler {
	if !a.config.KeylessAllowed() {
		return nil
	}

	return func(ctx ssh.Context, _ gossh.KeyboardInteractiveChallenge) bool {
		anon := a.anonymous(ctx)
		ctx.SetValue(ctxKeyUser, anon)
		a.logger.Info("keyless access", "name", anon.AnonymousName, "remote", ctx.RemoteAddr())
		return true
	}
}

func (a *Authenticator) anonymous(ctx ssh.Context) *access.UserInfo {
	return &access.UserInfo{
		IsAnonymous:   true,
		AnonymousName: a.names.Generate(),
		RemoteAddr:    ctx.RemoteAddr().String(),
	}
}

// GetUserFromContext retrieves user info from the SSH context.
func GetUserFromContext(ctx ssh.Context) *access.UserInfo {
	if user, ok := ctx.Value(ctxKeyUser).(*access.UserInfo); ok {
		return user
	}
	return nil
}

// FingerprintKey returns the SHA256 fingerprint of a public key.
func FingerprintKey(key ssh.PublicKey) string {
	return gossh.FingerprintSHA256(key)
}

// FingerprintKeyShort returns a shortened fingerprint for display.
func FingerprintKeyShort(key ssh.PublicKey) string {
	fp := FingerprintKey(key)
	if len(fp) > 20 {
		return fp[:20] + "..."
	}
	return fp
}
