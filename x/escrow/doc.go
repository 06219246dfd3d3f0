/*
Package escrow implements a non-custodial two-party exchange of assets.

A maker locks an amount of asset A in a vault and declares the amount of
asset B it wants in return. Any taker may complete the trade atomically,
or the maker may cancel the offer and recover the locked asset.

The vault is a token account owned by the offer itself. The owner
identity is a program derived address computed from ("offer", maker, id)
and the escrow program id. It is wrapped in an escrow/offer condition
that can be authorized only from within this package, so no key held by
a person can ever move the vault funds.

Every offer record and its vault are created by MakeOffer and destroyed
together by whichever of TakeOffer or CancelOffer executes first. Each of
those is a single transaction: a failure anywhere aborts all of its
effects.
*/
package escrow
