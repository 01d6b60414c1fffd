/*
Package ratelimit holds rate limiting primitives used around the control loop.

The bucket subpackage provides a non-blocking token bucket:

	limiter, _ := bucket.New(bucket.Every(time.Second), 3)
	if limiter.Allow() {
		logger.Warn("loop overrun", "elapsed", elapsed)
	}

The control loop never waits on a limiter. Allow either consumes tokens or
reports false, so a denied event costs nothing within the tick.
*/
package ratelimit
