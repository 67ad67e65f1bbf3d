// Package verification issues single-use email verification tokens.
//
// Issue generates a UUID token, emails a link containing it, and records it
// once the email was accepted by the sender. Validate consumes the token.
// Tokens older than the TTL (one hour by default) are rejected and evicted by a
// periodic sweep.
//
//	store, err := verification.New(sender, verification.WithLinkBase("https://tracker.example.com/verify/"))
//	if err != nil {
//		return err
//	}
//	eg.Go(store.Run(ctx))
//
//	token, err := store.Issue(ctx, "owner@example.com")
//	identity, err := store.Validate(ctx, token)
package verification
