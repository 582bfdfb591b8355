// Package apify invokes the hosted Instagram post scraper actor and maps
// its result dataset into post records.
//
// A scrape is one billed actor run: RunScraper starts the run and waits
// for a terminal status, CollectResults fetches the run's dataset and
// applies the fixed field projection. The client never retries a run;
// a failed run surfaces as a scrape error for the whole request.
//
// Example usage:
//
//	client := apify.NewClient(&cfg.Apify, log)
//
//	handle, err := client.RunScraper(ctx, "someuser")
//	if err != nil {
//	    // actor run failed; abort the request
//	}
//	records, err := client.CollectResults(ctx, handle)
package apify
