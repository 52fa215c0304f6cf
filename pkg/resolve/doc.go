// Package resolve turns an incoming request into the lookup key used to find
// its mock file.
//
// A lookup key is the escaped URL path, with "_<method>" appended for every
// method other than GET:
//
//	GET  /api/users  ->  /api/users
//	POST /api/users  ->  /api/users_post
//
// The key is mapped onto the mock data root by appending a file extension
// (".js", ".expr", ".json"). Query strings never take part in the key.
package resolve
