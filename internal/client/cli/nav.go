package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsession/internal/client/lifecycle"
)

// Current reports the view the REPL is on.
func (a *App) Current() lifecycle.RouteMeta {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, _ := lifecycle.Route(a.view)
	return m
}

// RedirectTo switches the current view.
func (a *App) RedirectTo(route string) {
	a.mu.Lock()
	a.view = route
	a.mu.Unlock()

	a.log.Debug(context.Background(), "redirect", "view", route)
}

// Notify prints a notice as "[kind] message".
func (a *App) Notify(kind lifecycle.NoticeKind, message string) {
	a.printf("[%s] %s\n", kind, message)
	a.log.Info(context.Background(), "notice", "kind", string(kind), "message", message)
}

// Navigate opens a view on user request. Views that do not fit the session
// are swapped the way a router guard would: authenticated views fall back to
// sign-in and guest-only views to the profile.
func (a *App) Navigate(view string) error {
	meta, ok := lifecycle.Route(view)
	if !ok {
		return fmt.Errorf("unknown view %q", view)
	}

	loggedIn := a.isLoggedIn()
	switch {
	case meta.RequiresAuth && !loggedIn:
		view = lifecycle.RouteSignIn
	case meta.GuestOnly && loggedIn:
		view = lifecycle.RouteProfile
	}

	a.RedirectTo(view)
	return nil
}
