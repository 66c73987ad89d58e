// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package metadata from the npm registry
// (https://registry.npmjs.org). newarch only needs one thing from it: the
// package's source repository, used when the React Native Directory has no
// entry for a dependency.
//
// # Usage
//
//	base := integrations.NewClient(nil)
//	client := npm.NewClient(base, "")
//
//	ref, err := client.Repository(ctx, "react-native-mmkv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if ref != nil {
//	    fmt.Println(ref.Owner, ref.Name)
//	}
//
// # Repository Field
//
// The registry's repository field may be a string or an object with url and
// directory. The top-level field is preferred; the latest version's field is
// used when the top-level one is missing. URLs are normalized with
// [integrations.ParseRepoRef].
package npm
