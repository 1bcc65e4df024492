package health

// ConfigChecker reports whether a vendor client has its credentials.
type ConfigChecker interface {
	Configured() bool
}
