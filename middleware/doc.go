// Package middleware provides net/http guards that run the engine's
// authentication chain and expose the resolved user through the request
// context.
package middleware
