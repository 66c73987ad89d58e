package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/newarch/pkg/compat"
	"github.com/matzehuels/newarch/pkg/config"
	apperrors "github.com/matzehuels/newarch/pkg/errors"
)

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "package.json")
	if err := os.WriteFile(file, []byte(`{}`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		args, deps   []string
		wantDir      string
		wantManifest string
		wantNames    []string
	}{
		{name: "nothing", wantDir: ".", wantManifest: "."},
		{name: "directory", args: []string{dir}, wantDir: dir, wantManifest: dir},
		{name: "file", args: []string{file}, wantDir: dir, wantManifest: file},
		{name: "names", args: []string{"lodash", "@scope/pkg"}, wantDir: ".", wantNames: []string{"lodash", "@scope/pkg"}},
		{name: "single unknown name", args: []string{"react-native-svg"}, wantDir: ".", wantNames: []string{"react-native-svg"}},
		{name: "dep flag", deps: []string{"dayjs"}, args: []string{"lodash"}, wantDir: ".", wantNames: []string{"dayjs", "lodash"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInput(tt.args, tt.deps)
			if err != nil {
				t.Fatalf("resolveInput() error: %v", err)
			}
			if got.projectDir != tt.wantDir || got.manifestPath != tt.wantManifest {
				t.Errorf("resolveInput() = %+v", got)
			}
			if !reflect.DeepEqual(got.names, tt.wantNames) {
				t.Errorf("names = %v, want %v", got.names, tt.wantNames)
			}
		})
	}
}

func TestResolveInputRejectsBadNames(t *testing.T) {
	_, err := resolveInput([]string{"ok", "../../etc"}, nil)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidPackage) {
		t.Errorf("resolveInput() error = %v, want INVALID_PACKAGE", err)
	}
}

func TestInputDependenciesSkip(t *testing.T) {
	in := checkInput{names: []string{"@types/node", "lodash"}}
	got, err := in.dependencies(config.Config{Skip: []string{"@types/*"}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"lodash"}) {
		t.Errorf("dependencies() = %v", got)
	}
}

// fakeServices serves the directory, the registry and raw manifests from one
// server, under /directory, /registry and /raw.
func fakeServices(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/directory", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "react-native-reanimated" {
			w.Write([]byte(`{"libraries":[{"newArchitecture":true}]}`))
			return
		}
		w.Write([]byte(`{"libraries":[]}`))
	})
	mux.HandleFunc("/registry/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/registry/") {
		case "lodash":
			w.Write([]byte(`{"repository":{"url":"git+https://github.com/lodash/lodash.git"}}`))
		case "react-native-camera":
			w.Write([]byte(`{"repository":"github:react-native-camera/react-native-camera"}`))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/raw/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/raw/lodash/lodash/main/package.json":
			w.Write([]byte(`{"devDependencies":{"mocha":"*"}}`))
		case "/raw/react-native-camera/react-native-camera/master/package.json":
			w.Write([]byte(`{"peerDependencies":{"react":"*"},"devDependencies":{"react-native":"*"}}`))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestConfig(t *testing.T, srv *httptest.Server, extra string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), config.FileName)
	content := `directory_url = "` + srv.URL + `/directory"
registry_url = "` + srv.URL + `/registry"
raw_url = "` + srv.URL + `/raw"
attempts = 1
` + extra
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCheckCommandProject(t *testing.T) {
	srv := fakeServices(t)
	cfg := writeTestConfig(t, srv, `skip = ["@types/*", "typescript", "jest"]`)

	out, err := runCLI(t, "check", "../../examples/rn-app", "--config", cfg, "--json")
	if err != nil {
		t.Fatalf("check error: %v", err)
	}

	var result compat.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}

	wantSupported := []string{"lodash", "react-native-reanimated"}
	wantNotSupported := []string{"react-native-camera"}
	wantNotFound := []string{"@react-navigation/native"}
	if !reflect.DeepEqual(result.SupportedNames, wantSupported) {
		t.Errorf("supported = %v, want %v", result.SupportedNames, wantSupported)
	}
	if !reflect.DeepEqual(result.NotSupportedNames, wantNotSupported) {
		t.Errorf("not supported = %v, want %v", result.NotSupportedNames, wantNotSupported)
	}
	if !reflect.DeepEqual(result.NotFoundNames, wantNotFound) {
		t.Errorf("not found = %v, want %v", result.NotFoundNames, wantNotFound)
	}
}

func TestCheckCommandNamesText(t *testing.T) {
	srv := fakeServices(t)
	cfg := writeTestConfig(t, srv, "")

	out, err := runCLI(t, "check", "--config", cfg, "--dep", "react-native-reanimated", "lodash")
	if err != nil {
		t.Fatalf("check error: %v", err)
	}
	if !strings.Contains(out, "Supported (2)") || !strings.Contains(out, "2 dependencies") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCheckCommandStrict(t *testing.T) {
	srv := fakeServices(t)
	cfg := writeTestConfig(t, srv, "")

	_, err := runCLI(t, "check", "--config", cfg, "--strict", "--json", "react-native-camera", "lodash")
	var strict *StrictError
	if !errors.As(err, &strict) {
		t.Fatalf("check error = %v, want *StrictError", err)
	}
	if !reflect.DeepEqual(strict.Names, []string{"react-native-camera"}) {
		t.Errorf("StrictError.Names = %v", strict.Names)
	}

	if _, err := runCLI(t, "check", "--config", cfg, "--strict", "--json", "lodash"); err != nil {
		t.Errorf("strict check of supported deps failed: %v", err)
	}
}

func TestCheckCommandErrors(t *testing.T) {
	srv := fakeServices(t)
	cfg := writeTestConfig(t, srv, "")
	badCfg := writeTestConfig(t, srv, "concurrency = 0")

	tests := []struct {
		name     string
		args     []string
		wantCode apperrors.Code
	}{
		{"bad show", []string{"check", "--config", cfg, "--show", "maybe", "lodash"}, ""},
		{"bad name", []string{"check", "--config", cfg, "bad name"}, apperrors.ErrCodeInvalidPackage},
		{"bad config", []string{"check", "--config", badCfg, "lodash"}, apperrors.ErrCodeInvalidConfig},
		{"bad flag override", []string{"check", "--config", cfg, "--attempts", "0", "lodash"}, apperrors.ErrCodeInvalidConfig},
		{"missing manifest", []string{"check", "--config", cfg, t.TempDir()}, apperrors.ErrCodeInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantCode != "" && !apperrors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"version"`) {
		t.Errorf("version output = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "newarch") {
		t.Error("bash completion does not mention newarch")
	}
}
