/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.

Every verified signature turns into a Condition of the form
sigs/ed25519/<pubkey> that handlers can check with an
x.Authenticator.
*/
package sigs
