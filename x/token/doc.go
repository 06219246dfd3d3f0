/*
Package token implements fungible assets and the accounts holding them.

A Mint declares an asset: its ticker, decimal precision and supply. A
TokenAccount holds a balance of exactly one mint on behalf of its owner.
Every owner has one canonical (associated) account per mint, at the
address returned by AssociatedAddress.

Moving assets is always a checked transfer: the caller declares the mint
and the decimal precision it expects, and the transfer fails unless both
accounts and the mint agree. Creating an account requires a storage
deposit in the native currency (see x/cash) which is returned when the
account is closed.
*/
package token
