// Package resilience provides reliability and fault tolerance patterns
// for the digest pipeline. It includes circuit breakers and retry logic
// used around every external collaborator (AI APIs, news feeds, SMTP).
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.AIProviderConfig("claude"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	err := retry.WithBackoff(ctx, retry.ProviderFetchConfig(), func() error {
//	    return performOperation()
//	})
package resilience
