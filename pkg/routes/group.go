package routes

import "net/http"

// Group organizes routes under a common prefix. Child groups extend the
// parent prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	Walk(func(pattern string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern, handler)
	}, groups...)
}

// Patterns returns the ServeMux pattern of every route in the groups,
// in registration order.
func Patterns(groups ...Group) []string {
	var patterns []string
	Walk(func(pattern string, _ http.HandlerFunc) {
		patterns = append(patterns, pattern)
	}, groups...)
	return patterns
}

// Walk visits every route depth-first with its fully prefixed pattern.
func Walk(fn func(pattern string, handler http.HandlerFunc), groups ...Group) {
	for _, group := range groups {
		walkGroup(fn, "", group)
	}
}

func walkGroup(fn func(string, http.HandlerFunc), parent string, group Group) {
	prefix := parent + group.Prefix
	for _, route := range group.Routes {
		fn(route.pattern(prefix), route.Handler)
	}
	for _, child := range group.Children {
		walkGroup(fn, prefix, child)
	}
}
