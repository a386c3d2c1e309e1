// Package fileinclude expands include directives in HTML templates:
//
//	@@include('partials/header.html', {"title": "Home"})
//	@@include_once('partials/analytics.html')
//	@@include(markdown('content/intro.md'))
//
// Paths are relative to the including file. The JSON object becomes the
// variable context of the included file, where @@title (or @@page.title for
// nested values) is replaced by its value. Unknown variables are left as is.
package fileinclude
