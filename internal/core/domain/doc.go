// Package domain contains the core business entities for decker.
// Types here are infrastructure-free; adapters depend on them, never the reverse.
package domain
