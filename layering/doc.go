// Package layering holds the path based partial state engine: dotted path
// get/set on record trees, cycle safe deep clones, right biased deep merges
// and projections of a tree onto a set of paths.
//
// Records are map[string]any, the shape state trees take once they cross a
// JSON storage boundary. Only records merge recursively; every other value
// replaces whatever it lands on.
package layering
