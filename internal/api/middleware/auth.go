package middleware

import (
	"net/http"

	"keyportal/internal/pkg/errors"
)

// RequireSignIn answers API calls from signed-out origins with 401.
func RequireSignIn(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := StateFrom(r).Session.Current(); !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeSignInRequired, "Sign in to continue", nil)
			return
		}
		next(w, r)
	}
}

// RedirectSignedOut sends signed-out page views to target.
func RedirectSignedOut(target string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := StateFrom(r).Session.Current(); !ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next(w, r)
		}
	}
}

// RedirectSignedIn sends signed-in page views to target.
func RedirectSignedIn(target string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := StateFrom(r).Session.Current(); ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next(w, r)
		}
	}
}
