/*
Package ledgertest provides mocks and helpers shared by the tests of ledger
extensions: authenticators, handlers, decorators, transactions and keys.
*/
package ledgertest
