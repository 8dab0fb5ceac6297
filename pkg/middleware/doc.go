// Package middleware contains the HTTP middleware for the service.
//
// SessionGate is the single authentication checkpoint: it classifies each
// request as public or protected, verifies the session cookie on protected
// routes, and either annotates the request context with the account id or
// turns the request away (401 for API calls, a redirect to the login page
// for everything else). Handlers behind the gate never re-check
// authentication; they read the account id from the context.
//
// The rate limiters throttle login attempts. RateLimiter keeps token
// buckets in process memory and serves a single instance; the Redis-backed
// DistributedRateLimiter shares counters across instances and fails open
// when Redis is unreachable, so an outage of the limiter never locks users
// out.
package middleware
