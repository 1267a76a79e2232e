// Package server provides HTTP routing, middleware, and the OAuth and scrape handlers of the dashboard API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// Unknown paths and wrong methods are answered with JSON errors.
//
// # Routes
//
//   - GET  /api/wahoo/authorize : redirect to the Wahoo consent page ([AuthorizeHandler])
//   - GET  /api/wahoo_callback  : exchange the authorization code ([CallbackHandler])
//   - POST /api/wahoo/scrape    : run the extractor and return its export ([ScrapeHandler])
//   - GET  /api/debug           : report which OAuth settings are present
//   - GET  /health              : liveness
//
// # OAuth Callback Handler
//
// [CallbackHandler] never answers the browser with JSON. Configuration problems and a missing code
// render a small HTML page; every other outcome is a redirect to the application base URL carrying
// either token or error=oauth_failed with details.
//
// # Middleware
//
// [RequestLogger] logs method, path and status. Query strings are left out since they carry codes
// and tokens. [Recover] turns panics into a JSON 500 and [RateLimit] guards the scrape endpoint with
// a token bucket.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
