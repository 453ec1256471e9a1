// Package scraper reads a DokuWiki site over HTTP.
//
// # Components
//
//   - Client: rate limited HTTP client shared by every request to the wiki
//   - IndexScraper: discovers the page list from the sitemap index
//   - SourceFetcher: reads page sources from the edit form and collects
//     contributors from the revision history
//
// All requests are sequential. The client waits on a token bucket limiter
// before each request and logs the URL it is about to visit.
//
// # Usage
//
//	client := scraper.NewClientFromConfig(cfg, logger)
//	pages, err := scraper.NewIndexScraper(client, cfg).Scrape(ctx)
package scraper
