// Package directory provides an HTTP client for the React Native Directory
// (https://reactnative.directory), the primary compatibility registry.
//
// # Lookup
//
//	GET <base>?search=<name>  ->  {"libraries": [{...}, ...]}
//
// Only the first returned record is considered. Its compatibility is the
// logical OR of three optional flags:
//
//   - expoGo: the library works in the Expo Go managed runtime
//   - newArchitecture: the maintainers declare New Architecture support
//   - github.newArchitecture: the source repository reports support
//
// A record where all three flags are absent, or an empty libraries array,
// is reported as not found so callers fall through to source inspection.
// An explicit false is a verdict, not an absence.
package directory
