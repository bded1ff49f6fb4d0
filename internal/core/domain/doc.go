// Package domain defines the core business entities for reportgen.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DocumentContents: Pages of tags, each tag carrying AI-generated variations
//   - Selection: The variation chosen per tag in the interactive flow
//   - Combination: One element of a page's Cartesian product of variations
//   - Artifact: A rendered document (and PDF) for one page combination
//
// It also holds the pure algorithms the rest of the application is built
// around: combination enumeration and combination key derivation.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
