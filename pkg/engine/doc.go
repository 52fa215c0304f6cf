// Package engine serves a mock data directory over HTTP.
//
// Every request passes through the same chain:
//
//	recovery -> CORS/preflight -> Handler
//
// Handler derives a lookup key from the method and path, asks the lookup
// engine for a match and answers with one of:
//
//   - the output of a dynamic handler (<key>.js or <key>.expr)
//   - the bytes of a static fixture (<key>.json), "null" when nearly empty
//   - 404 with an empty body when nothing matches
//
// OPTIONS requests and any path containing "favicon" get 200 with an empty
// body without touching the filesystem. Every response carries
// Access-Control-Allow-Origin: *, Access-Control-Allow-Headers: * and
// Content-Type: application/json.
//
// A failing handler produces a 500 for that request only; the server keeps
// serving.
package engine
