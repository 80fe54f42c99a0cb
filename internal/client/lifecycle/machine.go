package lifecycle

// Phase is the coarse session state.
type Phase int

const (
	LoggedOut Phase = iota
	LoggedIn
	// RefreshTokenExpired is passed through on the way back to LoggedOut.
	RefreshTokenExpired
)

func (p Phase) String() string {
	switch p {
	case LoggedIn:
		return "logged_in"
	case RefreshTokenExpired:
		return "refresh_token_expired"
	default:
		return "logged_out"
	}
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
)

// User-facing messages.
const (
	MsgLoggedIn   = "logged in successfully!"
	MsgRegistered = "Registered successfully!"
	MsgLoggedOut  = "Logged out successfully."
	MsgLogInAgain = "Please, log in again"
)

type Notice struct {
	Kind    NoticeKind
	Message string
}

// Intent lists the side effects of a transition. The zero value does nothing.
type Intent struct {
	Phase Phase

	Arm    bool
	Disarm bool

	SetLatch   bool
	ClearLatch bool

	// Manual is true for a user-initiated logout.
	Manual bool

	RedirectTo string
	Notices    []Notice
}

// Noop reports whether applying the intent would change anything.
func (i Intent) Noop() bool {
	return !i.Arm && !i.Disarm && !i.SetLatch && !i.ClearLatch &&
		i.RedirectTo == "" && len(i.Notices) == 0
}

// WithNotice returns a copy of i with one more notice appended.
func (i Intent) WithNotice(kind NoticeKind, message string) Intent {
	notices := make([]Notice, 0, len(i.Notices)+1)
	notices = append(notices, i.Notices...)
	i.Notices = append(notices, Notice{Kind: kind, Message: message})
	return i
}

// EnterLoggedIn clears the latch and arms the refresh timer. A guest-only
// view is left for the profile.
func EnterLoggedIn(current RouteMeta) Intent {
	in := Intent{Phase: LoggedIn, Arm: true, ClearLatch: true}
	if current.GuestOnly {
		in.RedirectTo = RouteProfile
	}
	return in
}

// EnterLoggedOut disarms the refresh timer and leaves views that no longer
// fit: authenticated views go to sign-in, guest-only views go home.
func EnterLoggedOut(current RouteMeta, manual bool) Intent {
	in := Intent{Phase: LoggedOut, Disarm: true, Manual: manual}
	switch {
	case current.RequiresAuth:
		in.RedirectTo = RouteSignIn
	case current.GuestOnly:
		in.RedirectTo = RouteHome
	}
	return in
}

// RefreshTokenExpiredLatch sets the latch and asks the user to sign in again.
// It returns an empty intent when the latch is already set.
func RefreshTokenExpiredLatch(latched bool) Intent {
	if latched {
		return Intent{Phase: LoggedOut}
	}
	return Intent{
		Phase:    RefreshTokenExpired,
		Disarm:   true,
		SetLatch: true,
		Notices:  []Notice{{Kind: NoticeInfo, Message: MsgLogInAgain}},
	}
}

// SignedIn is EnterLoggedIn followed by the logged-in notice.
func SignedIn(current RouteMeta) Intent {
	return EnterLoggedIn(current).WithNotice(NoticeSuccess, MsgLoggedIn)
}

// SignedUp is EnterLoggedIn with the registration notice in place of the
// logged-in one.
func SignedUp(current RouteMeta) Intent {
	return EnterLoggedIn(current).WithNotice(NoticeSuccess, MsgRegistered)
}

// LoggedOutManually is EnterLoggedOut for a user-initiated logout.
func LoggedOutManually(current RouteMeta) Intent {
	return EnterLoggedOut(current, true).WithNotice(NoticeSuccess, MsgLoggedOut)
}
