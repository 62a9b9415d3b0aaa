// Package session holds the pure session policy (midnight expiry, refresh
// eligibility) and the cookie transport contract shared by the engine and
// the HTTP layer.
//
// There is no server-side session state: a session is the bearer token
// plus the cookie that carries it.
package session
