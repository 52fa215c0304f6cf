// Package script runs dynamic mock handlers.
//
// A handler is a file in the mock data root whose extension selects a Loader:
//
//   - ".js" files are CommonJS modules evaluated with goja. The module exports
//     a single-argument function (module.exports = function (req) {...}, or
//     exports.default) whose return value becomes the response body.
//   - ".expr" files hold one expr-lang expression evaluated against the
//     request fields.
//
// Loaded handlers are cached by file name for the lifetime of the Invoker, so
// module-level state in a JavaScript handler persists between requests.
// Concurrent first requests for the same handler share a single load.
//
// Handlers run with the full privileges of the process. Errors and panics
// raised while loading or running a handler are returned as *HandlerError.
package script
