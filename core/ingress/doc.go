// Package ingress feeds producer updates into the relay hub.
//
// Producers publish to Redis channels named "tracker:updates:<key>". The
// subscriber PSUBSCRIBEs to the pattern and hands each message body to the hub
// addressed to <key>:
//
//	sub, err := ingress.New(redisClient, hub)
//	if err != nil {
//		return err
//	}
//	eg.Go(sub.Run(ctx))
package ingress
