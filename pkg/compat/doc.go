// Package compat decides whether React Native dependencies support the New
// Architecture.
//
// # Overview
//
// A [Resolver] takes a set of dependency names and classifies each one
// independently through an ordered fallback chain:
//
//  1. Directory: the React Native Directory is asked first. A record with
//     any compatibility flag is final (see [directory.Entry]).
//  2. Repository: otherwise the npm registry is asked for the dependency's
//     source repository ([RepositoryStage]).
//  3. Manifest: the repository's package.json is read from each candidate
//     branch in priority order ([Analyzer]). A declared dependency whose
//     name contains a native marker means native code ([NativeDeps]); none
//     means pure JavaScript ([FullJS]).
//
// Every name ends with exactly one [Status]. A name that no stage could
// classify, for whatever reason, is [StatusNotFound]; the error behind it is
// logged at debug level and never returned.
//
// # Concurrency
//
// Names are resolved on an errgroup bounded by Options.Concurrency. Tasks
// share nothing but a [Collector], which serializes aggregation behind a
// mutex and rejects a second verdict for the same name.
//
// # Usage
//
//	base := integrations.NewClient(nil)
//	r := compat.NewResolver(
//	    directory.NewClient(base, ""),
//	    npm.NewClient(base, ""),
//	    github.NewRawClient(base, ""),
//	    compat.Options{Logger: logger},
//	)
//	result, err := r.Resolve(ctx, []string{"react-native-reanimated", "lodash"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Supported, result.NotSupported, result.NotFound)
package compat
