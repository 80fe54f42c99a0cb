// Package lifecycle holds the session state machine. Transitions are pure:
// they inspect the current route and return an Intent that the auth service
// applies to the scheduler, the session latch, navigation and notification.
package lifecycle
