// Package resilience groups the fault tolerance helpers used around outbound
// calls to the asset host, the payment gateway and the mail provider.
//
// Calls are attempted exactly once. A circuit breaker only stops the service
// from hammering a provider that is already failing:
//
//	cb := circuitbreaker.New(circuitbreaker.PaystackConfig())
//	res, err := circuitbreaker.Call(cb, func() (*Session, error) {
//	    return client.initialize(ctx, req)
//	})
package resilience
