// Package google holds the shared plumbing for Google API adapters:
// service construction, OAuth token sources, rate limits and error mapping.
//
// The Drive archive sink and the Google translator are built on it.
package google
