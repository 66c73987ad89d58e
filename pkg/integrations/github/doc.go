// Package github fetches package.json manifests straight from source hosts.
//
// # Overview
//
// The analyzer in [github.com/matzehuels/newarch/pkg/compat] only needs the
// declared dependency names of a library, so this package skips the REST API
// entirely and reads raw file contents, which needs no token and counts
// against no API quota.
//
// # Raw Layouts
//
// [RawClient.ManifestURL] knows three hosts:
//
//	github.com     <raw-base>/<owner>/<name>/<branch>/[<dir>/]package.json
//	gitlab.com     https://gitlab.com/<owner>/<name>/-/raw/<branch>/[<dir>/]package.json
//	bitbucket.org  https://bitbucket.org/<owner>/<name>/raw/<branch>/[<dir>/]package.json
//
// The GitHub raw base defaults to [DefaultRawURL]. Any other host fails with
// ErrCodeUnsupported, which the analyzer treats like any other fetch failure.
//
// # Usage
//
//	raw := github.NewRawClient(integrations.NewClient(nil), "")
//	m, err := raw.FetchManifest(ctx, *ref, "main")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(m.Names())
package github
