package compat

import (
	"context"
	"testing"

	"github.com/matzehuels/newarch/pkg/integrations/github"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		manifests  map[string]*github.PackageManifest
		want       Classification
		wantBranch string
		wantNative string
	}{
		{
			name:       "full js on main",
			manifests:  map[string]*github.PackageManifest{"o/r@main": deps("lodash")},
			want:       FullJS,
			wantBranch: "main",
		},
		{
			name:       "native dependency",
			manifests:  map[string]*github.PackageManifest{"o/r@main": deps("lodash", "react-native-camera")},
			want:       NativeDeps,
			wantBranch: "main",
			wantNative: "react-native-camera",
		},
		{
			name: "native dev dependency",
			manifests: map[string]*github.PackageManifest{"o/r@main": {
				DevDependencies: map[string]string{"react-native": "0.74.0"},
			}},
			want:       NativeDeps,
			wantBranch: "main",
			wantNative: "react-native",
		},
		{
			name:       "marker as substring",
			manifests:  map[string]*github.PackageManifest{"o/r@main": deps("@scope/my-react-native-thing")},
			want:       NativeDeps,
			wantBranch: "main",
			wantNative: "@scope/my-react-native-thing",
		},
		{
			name:       "secondary branch only",
			manifests:  map[string]*github.PackageManifest{"o/r@master": deps("react-native-svg")},
			want:       NativeDeps,
			wantBranch: "master",
			wantNative: "react-native-svg",
		},
		{
			name:       "empty manifest",
			manifests:  map[string]*github.PackageManifest{"o/r@main": {}},
			want:       FullJS,
			wantBranch: "main",
		},
		{
			name:      "all branches fail",
			manifests: map[string]*github.PackageManifest{},
			want:      Unresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeManifests{manifests: tt.manifests}
			a := NewAnalyzer(src, nil, nil, nil)

			got := a.Analyze(context.Background(), *repo("o", "r"))
			if got.Classification != tt.want {
				t.Errorf("Classification = %v, want %v", got.Classification, tt.want)
			}
			if got.Branch != tt.wantBranch {
				t.Errorf("Branch = %q, want %q", got.Branch, tt.wantBranch)
			}
			if got.Native != tt.wantNative {
				t.Errorf("Native = %q, want %q", got.Native, tt.wantNative)
			}
			if tt.want == Unresolved && got.Err == nil {
				t.Error("Unresolved analysis carries no error")
			}
		})
	}
}

func TestAnalyzeBranchPriority(t *testing.T) {
	src := &fakeManifests{manifests: map[string]*github.PackageManifest{
		"o/r@main":   deps("lodash"),
		"o/r@master": deps("react-native-stale"),
	}}
	a := NewAnalyzer(src, nil, nil, nil)

	got := a.Analyze(context.Background(), *repo("o", "r"))
	if got.Classification != FullJS || got.Branch != "main" {
		t.Errorf("Analyze() = %+v, want FullJS from main", got)
	}
	if src.calls.get("o/r@master") != 0 {
		t.Error("secondary branch fetched although primary succeeded")
	}
}

func TestAnalyzeTriesBranchesInOrder(t *testing.T) {
	src := &fakeManifests{manifests: map[string]*github.PackageManifest{}}
	a := NewAnalyzer(src, []string{"develop", "main", "master"}, nil, nil)

	a.Analyze(context.Background(), *repo("o", "r"))

	want := []string{"o/r@develop", "o/r@main", "o/r@master"}
	if len(src.order) != len(want) {
		t.Fatalf("fetch order = %v, want %v", src.order, want)
	}
	for i := range want {
		if src.order[i] != want[i] {
			t.Errorf("fetch %d = %q, want %q", i, src.order[i], want[i])
		}
	}
}

func TestAnalyzeCustomMarkers(t *testing.T) {
	src := &fakeManifests{manifests: map[string]*github.PackageManifest{
		"o/r@main": deps("expo-camera", "lodash"),
	}}
	a := NewAnalyzer(src, nil, []string{"react-native", "expo-"}, nil)

	got := a.Analyze(context.Background(), *repo("o", "r"))
	if got.Classification != NativeDeps || got.Native != "expo-camera" {
		t.Errorf("Analyze() = %+v, want NativeDeps via expo-camera", got)
	}
}
