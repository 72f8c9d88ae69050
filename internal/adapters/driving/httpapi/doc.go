// Package httpapi exposes the archive over HTTP.
//
// Routes are registered on a net/http ServeMux using method patterns.
// Reads need a viewer identity, mutations need an editor; when no API
// tokens are configured every caller is treated as an anonymous editor.
// Errors are returned as {"error": "..."} with a status derived from the
// domain sentinel errors.
package httpapi
