// Package server provides HTTP routing, middleware, and the websocket endpoint for collection clients.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Websocket Endpoint
//
// [WSHandler] upgrades requests on /ws and runs one [session.Session] per
// connection. Sessions share a [session.Registry] so server-side endpoints
// can broadcast events to every connected client.
//
// # Control Endpoints
//
// POST /play/{id} broadcasts a play-id event to all live sessions, which lets
// other local programs (media keys, scripts) trigger playback in the client.
//
// GET /health reports liveness and the live session count.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
