package catalog

import "os"

// Resolver turns a step's target reference into an address. An empty
// address means the step is not configured.
type Resolver interface {
	Resolve(target string) string
}

type ResolverFunc func(target string) string

func (f ResolverFunc) Resolve(target string) string {
	return f(target)
}

// EnvResolver reads addresses from the process environment.
type EnvResolver struct{}

func (EnvResolver) Resolve(target string) string {
	if target == "" {
		return ""
	}

	return os.Getenv(target)
}

// MapResolver serves addresses from a fixed map.
type MapResolver map[string]string

func (m MapResolver) Resolve(target string) string {
	return m[target]
}

// ChainResolver returns the first non-empty address among its resolvers.
type ChainResolver []Resolver

func (c ChainResolver) Resolve(target string) string {
	for _, r := range c {
		if addr := r.Resolve(target); addr != "" {
			return addr
		}
	}

	return ""
}
