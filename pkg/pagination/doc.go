// Package pagination follows opaque continuation tokens through a paginated
// catalog listing.
//
// The listing service returns one page per call together with a lastPage
// flag and an optional nextPageToken. The Collector runs a two-state machine:
//
//	Fetching --(page has lastPage=true or no token)--> Done
//	Fetching --(page has a token)-------------------> Fetching (with that token)
//
// Pages are consumed strictly sequentially; each page's items are handed to a
// PageSink in server order, so overall order equals delivery order. Any fetch
// or sink failure ends the run with an error, and no resume point is kept.
// A MaxPages bound stops malformed servers that keep returning tokens.
//
// Example usage:
//
//	client, _ := catalog.New(catalog.DefaultConfig(cookies))
//	collector := pagination.NewCollector(client, pagination.DefaultConfig())
//	acc := pagination.NewAccumulator()
//	stats, err := collector.Collect(ctx, acc)
//	items := acc.Items()
package pagination
