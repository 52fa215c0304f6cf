// Package lookup decides which mock file answers a request.
//
// An Engine walks an ordered chain of sources for a lookup key. The default
// chain is:
//
//  1. <key>.js    dynamic JavaScript handler
//  2. <key>.expr  dynamic expression handler
//  3. <key>.json  static fixture
//
// The first source whose file exists wins; when none matches the outcome is
// KindNotFound. Dynamic hits only name the file; running it is the job of the
// script package. Static hits carry the file body, with files shorter than
// two bytes answered as the JSON literal null.
package lookup
