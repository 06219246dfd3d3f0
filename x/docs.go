/*
Package x contains the extensions of the ledger.

Extensions implement common functionality (Handler, Decorator,
Initializer, etc.) and are combined together to construct the
application. Every sub-package owns its part of the state and
exposes handlers for the messages it understands.

This package holds the pieces shared by all of them, most notably the
Authenticator abstraction used to decide which conditions signed a
transaction.
*/
package x
