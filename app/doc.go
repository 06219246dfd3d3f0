/*
Package app contains the ABCI application of the ledger: the store app
that keeps committed, check and deliver state, the base app that decodes
and dispatches transactions, and the building blocks to assemble a
handler stack (decorator chains and the message router).
*/
package app
