// Package slug turns titles into URL path segments.
//
//	slug.Make("Café & Restaurant")                 // "cafe-restaurant"
//	slug.Make("Dark Side of the Moon", slug.WithSuffix(3)) // "dark-side-of-the-moon-Xy_9"
//
// Diacritics are removed through Unicode decomposition; any other rune that
// is not an ASCII letter or digit becomes a separator.
package slug
