package app

import (
	"fmt"
	"sync"

	"github.com/telecomplus/contratos/internal/transport"
)

// navigator tracks the "current route" of the CLI, the analogue of the
// browser location. Each command sets its route before making calls so that
// a 401 during login does not trigger a second redirect.
type navigator struct {
	mu      sync.Mutex
	route   string
	onLogin func()
}

func newNavigator() *navigator {
	return &navigator{route: "/"}
}

// CurrentRoute implements transport.Navigator.
func (n *navigator) CurrentRoute() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}

// NavigateTo implements transport.Navigator. Landing on the login route
// drops the in-memory session and tells the user to sign in again.
func (n *navigator) NavigateTo(route string) {
	n.mu.Lock()
	n.route = route
	cb := n.onLogin
	n.mu.Unlock()

	if route == transport.LoginRoute {
		if cb != nil {
			cb()
		}
		fmt.Println("La sesión ha expirado. Inicia sesión de nuevo con: contratos login")
	}
}

func (n *navigator) setRoute(route string) {
	n.mu.Lock()
	n.route = route
	n.mu.Unlock()
}
