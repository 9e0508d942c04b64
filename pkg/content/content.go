package content

import "context"

// Crawler fetches the readable text of a website. An empty string with nil
// error means the crawl ran but found nothing worth indexing.
type Crawler interface {
	Crawl(ctx context.Context, url string, maxPages int) (string, error)
}

// DocumentExtractor pulls plain text out of an uploaded document on disk.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}
