package lifecycle

// Route names known to the client.
const (
	RouteHome    = "home"
	RouteSignIn  = "signin"
	RouteSignUp  = "signup"
	RouteProfile = "profile"
)

// RouteMeta describes a view. RequiresAuth views are only reachable while
// logged in; GuestOnly views only while logged out.
type RouteMeta struct {
	Name         string
	RequiresAuth bool
	GuestOnly    bool
}

var routes = map[string]RouteMeta{
	RouteHome:    {Name: RouteHome},
	RouteSignIn:  {Name: RouteSignIn, GuestOnly: true},
	RouteSignUp:  {Name: RouteSignUp, GuestOnly: true},
	RouteProfile: {Name: RouteProfile, RequiresAuth: true},
}

// Route returns the metadata of a named view.
func Route(name string) (RouteMeta, bool) {
	m, ok := routes[name]
	return m, ok
}
