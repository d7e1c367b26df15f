// Package ports defines the interfaces between the dialogue core and the
// outside world: the account directory it consults, the state stores that
// persist sessions, and the driver-facing engine contract. Adapters implement
// these interfaces; the core depends only on the abstractions.
package ports
