/*
Package ledger defines interfaces used throughout the escrow ledger, such as:
storage, transactions, handlers etc.
It also contains helpers to work with conditions, context, account encoding
and abci results.
Look into this package to get a brief overview of design decisions made around
interfaces and extension building blocks.
*/
package ledger
