package access

import (
	"path"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RolePrinter Role = "printer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePrinter
}

// Caller is the identity resolved for one request. A caller that is not
// authenticated has no role at all; an authenticated caller may still carry a
// role this service does not recognise.
type Caller struct {
	Authenticated bool
	Role          Role
}

func Anonymous() Caller {
	return Caller{}
}

func Authenticated(role Role) Caller {
	return Caller{Authenticated: true, Role: role}
}

type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectUnauthorized
	RedirectOrders
	RedirectHome
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	OrdersPath       = "/orders"
	HomePath         = "/"
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	case RedirectOrders:
		return "redirect_orders"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Target returns the redirect location for d, or "" for Allow.
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectUnauthorized:
		return UnauthorizedPath
	case RedirectOrders:
		return OrdersPath
	case RedirectHome:
		return HomePath
	default:
		return ""
	}
}

type Policy struct {
	// LegacyPrefixMatch lets printers through on any path that textually
	// starts with /orders, including /orders-export.
	LegacyPrefixMatch bool
}

var defaultPolicy = Policy{}

func Evaluate(caller Caller, requestPath string) Decision {
	return defaultPolicy.Evaluate(caller, requestPath)
}

func (p Policy) Evaluate(caller Caller, requestPath string) Decision {
	clean := normalize(requestPath)

	switch clean {
	case LoginPath:
		if caller.Authenticated && caller.Role.Valid() {
			return RedirectHome
		}
		return Allow
	case UnauthorizedPath:
		return Allow
	}

	if !caller.Authenticated {
		return RedirectLogin
	}

	switch caller.Role {
	case RoleAdmin:
		return Allow
	case RolePrinter:
		if p.printerAllowed(clean) {
			return Allow
		}
		return RedirectOrders
	default:
		return RedirectUnauthorized
	}
}

func (p Policy) printerAllowed(clean string) bool {
	if clean == HomePath {
		return true
	}
	if p.LegacyPrefixMatch {
		return strings.HasPrefix(clean, OrdersPath)
	}
	return clean == OrdersPath || strings.HasPrefix(clean, OrdersPath+"/")
}

func normalize(requestPath string) string {
	if requestPath == "" {
		return HomePath
	}
	if !strings.HasPrefix(requestPath, "/") {
		requestPath = "/" + requestPath
	}
	return path.Clean(requestPath)
}
