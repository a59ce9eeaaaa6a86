// Package phoneauth is the client side of phone number sign in.
//
// A Flow walks a user from phone entry to an authenticated Identity: it
// obtains a challenge token from a ChallengeIssuer, asks an IdentityProvider
// to send a code, confirms the code against the returned PendingVerification,
// makes sure a profile record exists through the Reconciler and finally
// commits the identity to the provider and logs it into the SessionStore.
// Nothing observes a confirmed identity before its record is reconciled. Pages observe the SessionStore and a
// Gate decides whether they may render.
//
// SDKClient implements the provider, challenge renderer and record store
// interfaces against the identity service in cmd/identity. The request and
// response types in wire.go are shared with that service.
package phoneauth
