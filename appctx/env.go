// Package appctx carries the per-operation context: which store to use, who
// is acting and what time it is.
package appctx

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"inbound/sheet"
)

// Env is threaded through every operation in place of ambient globals.
type Env struct {
	Store    sheet.Store
	User     string
	Now      time.Time
	Location *time.Location
	Logger   *zap.Logger
}

// New stamps the current time once; every write in the operation shares it.
func New(store sheet.Store, user string, loc *time.Location, logger *zap.Logger) Env {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Env{
		Store:    store,
		User:     user,
		Now:      time.Now().In(loc),
		Location: loc,
		Logger:   logger,
	}
}

// Identity headers set by the fronting proxy, in order of preference.
var identityHeaders = []string{"X-Forwarded-Email", "X-Forwarded-User", "X-User"}

// UserFromRequest resolves the acting user, falling back to defaultUser.
func UserFromRequest(r *http.Request, defaultUser string) string {
	for _, h := range identityHeaders {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v
		}
	}
	return defaultUser
}

// FromRequest builds the Env for one HTTP request.
func FromRequest(r *http.Request, store sheet.Store, defaultUser string, loc *time.Location, logger *zap.Logger) Env {
	user := UserFromRequest(r, defaultUser)
	env := New(store, user, loc, logger)
	env.Logger = env.Logger.With(zap.String("user", user))
	return env
}

// Log returns a usable logger even for a zero Env.
func (e Env) Log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Loc returns the Env's location, UTC when unset.
func (e Env) Loc() *time.Location {
	if e.Location == nil {
		return time.UTC
	}
	return e.Location
}

// Factory holds what every request's Env shares.
type Factory struct {
	Store       sheet.Store
	DefaultUser string
	Location    *time.Location
	Logger      *zap.Logger
}

// FromRequest builds the Env for r.
func (f Factory) FromRequest(r *http.Request) Env {
	return FromRequest(r, f.Store, f.DefaultUser, f.Location, f.Logger)
}

// Background builds an Env for CLI runs, acting as the default user.
func (f Factory) Background() Env {
	return New(f.Store, f.DefaultUser, f.Location, f.Logger)
}
