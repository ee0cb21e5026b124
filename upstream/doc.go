// Package upstream is the remote content collaborator: it fetches enriched
// article content, runs paginated annotation searches, and translates
// annotation ids to the legacy ids the search API understands.
//
// # Configuration
//
// Use NewConfig with functional options:
//
//	cfg := upstream.NewConfig(
//	    upstream.WithAPIKey(os.Getenv("CAPI_KEY")),
//	    upstream.WithRequestsPerSecond(5),
//	)
//	client, err := upstream.NewClient(cfg)
//
// # Resilience
//
// Every request passes a token-bucket limiter, is retried with exponential
// backoff on transport failures and 5xx responses, and is timed into the
// client's Metrics. Successful responses are cached per article id, search
// query and annotation id.
//
// # Errors
//
// A 404 matches core.ErrNotFound. Every other failure matches
// core.ErrUpstreamUnavailable. Payloads that cannot be decoded are reported
// as *DecodeError carrying the raw text and the query that produced it.
package upstream
