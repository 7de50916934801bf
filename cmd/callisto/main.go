// Callisto is a hierarchical privacy decision engine with a tiered
// decision cache.
//
// It evaluates data access requests against subject privacy preferences
// over nested-set attribute and purpose taxonomies, resolving each
// decision through a chain of tiers: local cache, optional trusted
// execution provider, authoritative cache, authoritative engine.
//
// Usage:
//
//	# Start the API server with default configuration
//	callisto run
//
//	# Start with a custom configuration file
//	callisto run --config /path/to/config.yaml
//
//	# Validate a hierarchy file
//	callisto validate --file hierarchy.yaml
//
//	# Resolve a one-shot decision from files
//	callisto evaluate --hierarchy hierarchy.yaml --request request.yaml --preference preference.yaml
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
