// Package http serves the strategist web front end.
//
// The same routes answer browsers and API clients. Requests that send or
// accept application/json get JSON bodies; everything else gets the rendered
// HTML page.
//
//	GET    /                  page with upload form and description box
//	POST   /documents         multipart PDF upload, ingested into the knowledge base
//	POST   /strategies        {description} → strategy text and saved PDF name
//	GET    /strategies/:file  download a saved strategy PDF
//	GET    /api/v1/status     chunk count and cache statistics
//	DELETE /api/v1/cache      clear the strategy cache
//	GET    /health            liveness
//	GET    /metrics           Prometheus exposition
package http
