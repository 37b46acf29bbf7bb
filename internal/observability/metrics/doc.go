/*
Package metrics exposes the API's Prometheus collectors and small Record*
helpers so callers never touch label values directly.

	metrics.RecordDonationVerified(string(entity.DonationSuccessful))
	metrics.RecordAssetOperation("upload", err == nil)

All names share the tlwd_ prefix.
*/
package metrics
