// Package auth provides password hashing and signed access tokens.
//
// Tokens are HS256 JWTs whose subject is the user id and whose jti names
// the access_tokens row that must still exist for the token to be accepted.
package auth
