// Package integrations provides HTTP clients for the data sources consulted
// when deciding whether a dependency supports the React Native New
// Architecture.
//
// # Overview
//
// Each data source has its own subpackage:
//
//   - [directory]: React Native Directory, the primary compatibility registry
//   - [npm]: npm registry, used to recover a package's source repository
//   - [github]: raw package.json fetches from source hosts
//
// # Shared Infrastructure
//
// The [Client] type is the single bounded fetcher every subpackage goes
// through. It enforces:
//
//   - a per-attempt timeout ([DefaultTimeout])
//   - a retry policy ([httputil.Policy]) for transport errors, timeouts,
//     429 and 5xx responses
//   - a structured error taxonomy from [apperrors]
//   - optional per-host circuit breakers ([WithBreaker])
//
// Connections are dialled through a shared DNS cache (github.com/rs/dnscache).
//
// [RepoRef] and [NormalizeRepoURL] turn the repository fields found in
// package manifests into canonical https://host/owner/name addresses.
//
// [directory]: github.com/matzehuels/newarch/pkg/integrations/directory
// [npm]: github.com/matzehuels/newarch/pkg/integrations/npm
// [github]: github.com/matzehuels/newarch/pkg/integrations/github
// [httputil.Policy]: github.com/matzehuels/newarch/pkg/httputil.Policy
// [apperrors]: github.com/matzehuels/newarch/pkg/errors
package integrations
