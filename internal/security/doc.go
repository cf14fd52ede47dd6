// Package security holds the HTTP middleware that hardens every response:
// CSRF protection for form posts, security headers and request ids.
package security
