// package server hosts the short-lived local HTTP listener that receives the
// OAuth redirect callback.
//
// The listener exists only for the duration of an authorization flow: it
// serves exactly one callback, exchanges the authorization code for a token,
// reports the result on a channel, and is then shut down by the caller.
package server
