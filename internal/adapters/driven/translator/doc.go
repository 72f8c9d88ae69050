// Package translator implements driven.Translator backends: Google Cloud
// Translation, a LibreTranslate server, the local argos-translate CLI, and a
// Chain that tries several of them in order.
package translator
