// Package appconf holds application-level configuration shared across the
// server: environment, listen port, API keys, and rate limiting.
package appconf

// Environment identifies the runtime environment of the application.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

// EnvFlagToEnvironment maps the -env flag value to an Environment.
// Unknown values fall back to Development.
func EnvFlagToEnvironment(env string) Environment {
	switch env {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

func (e Environment) String() string {
	switch e {
	case Production:
		return "production"
	case Test:
		return "test"
	default:
		return "development"
	}
}

// Config holds the server configuration assembled from command-line flags.
type Config struct {
	Port      int
	Env       Environment
	ApiKeys   []string
	Verbose   bool
	RateLimit int
}
