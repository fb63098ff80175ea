// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a load to run:
//
//   - BatchWriter: Persists batches of documents to the target store
//   - DocumentFileReader: Discovers files and builds documents
//   - FormatGetter: Infers document formats from file names
//   - FileFilter: Excludes files and directories from discovery
//
// # Optional Interfaces
//
// These can be nil - the loader degrades gracefully:
//
//   - DocumentProcessor / ProcessorChain: Extra document transformations
//   - TokenReplacer: Property token substitution; without it content is untouched
//   - PropertiesSource: Key/value tables consumed by the TokenReplacer
//   - ModulesFinder: Classification of modules directories
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or processor package
package driven
