// Package domain contains the core types of the card replacement dialogue:
// the session state and its slot fields, the closed Awaiting and Outcome
// enumerations, card records, transcript messages, and lifecycle events.
//
// The types here carry no behavior beyond small helpers; the business rules
// live in the dialogue engine, and persistence lives behind the ports package.
package domain
