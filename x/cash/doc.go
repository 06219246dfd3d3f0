/*
Package cash implements the native currency of the ledger.

Every address may own a wallet with a single balance of the native
currency. The native currency pays for storage: creating an account on the
ledger requires depositing a rent exempt amount into the wallet of that
account, and closing the account returns the deposit.
*/
package cash
