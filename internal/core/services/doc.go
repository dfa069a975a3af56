// Package services contains the core business logic, free of transport
// and storage concerns. Services depend only on the port interfaces and
// are driven by the CLI adapters.
package services
