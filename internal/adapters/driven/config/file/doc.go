// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - Properties: a ConfigStore table exposed as a PropertiesSource
//   - DecodeLoaderSettings / ValidateLoaderSettings: the [loader] table
package file
