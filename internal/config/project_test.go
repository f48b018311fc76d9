package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nickldimartino/bdct/internal/version"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bdct.cue")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write cfg: %v", err)
	}
	return p
}

func TestLoadProject_UnknownConfigVersion(t *testing.T) {
	cfg := writeProject(t, "{\n  configVersion: \"2\"\n}\n")
	_, err := LoadProject(cfg)
	if err == nil {
		t.Fatalf("expected error")
	}
	want := "unsupported configVersion: \"2\" (supported: 1)"
	if err.Error() != want {
		t.Fatalf("unexpected error\nwant: %s\n got: %s", want, err.Error())
	}
}

func TestLoadProject_MissingConfigVersion(t *testing.T) {
	cfg := writeProject(t, "{\n  trunkBranch: \"main\"\n}\n")
	_, err := LoadProject(cfg)
	if err == nil || err.Error() != "missing required field: configVersion" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadProject_Overrides(t *testing.T) {
	cfg := writeProject(t, `{
  configVersion: "1"
  names: { provider: "CDCT-JS-Provider" }
  trunkBranch: "trunk"
  commands: { broker: "/opt/pact/bin/pact-broker" }
  versionFile: { canIDeploy: "fail" }
  timeoutMs: 30000
  openapi: { sources: ["src/provider"], output: "out/api.yaml" }
}
`)
	p, err := LoadProject(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Names.Provider != "CDCT-JS-Provider" || p.Names.Consumer != "BDCT-JS-Consumer" {
		t.Fatalf("unexpected names: %+v", p.Names)
	}
	if p.TrunkBranch != "trunk" || p.ScratchDir != "tmp" {
		t.Fatalf("unexpected branch/scratch: %q %q", p.TrunkBranch, p.ScratchDir)
	}
	if p.Commands.Broker != "/opt/pact/bin/pact-broker" || p.Commands.Pactflow != "pactflow" {
		t.Fatalf("unexpected commands: %+v", p.Commands)
	}
	if p.VersionFile.CanIDeploy != version.PolicyFail || p.VersionFile.RecordDeployment != version.PolicyFail {
		t.Fatalf("unexpected policies: %+v", p.VersionFile)
	}
	if p.TimeoutMs != 30000 {
		t.Fatalf("unexpected timeout: %d", p.TimeoutMs)
	}
	if len(p.OpenAPI.Sources) != 1 || p.OpenAPI.Sources[0] != "src/provider" || p.OpenAPI.Output != "out/api.yaml" {
		t.Fatalf("unexpected openapi: %+v", p.OpenAPI)
	}
}

func TestLoadProject_InvalidPolicy(t *testing.T) {
	cfg := writeProject(t, "{\n  configVersion: \"1\"\n  versionFile: { recordDeployment: \"ignore\" }\n}\n")
	_, err := LoadProject(cfg)
	if err == nil || !strings.Contains(err.Error(), "versionFile.recordDeployment") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadProject_WrongType(t *testing.T) {
	cfg := writeProject(t, "{\n  configVersion: \"1\"\n  timeoutMs: \"soon\"\n}\n")
	_, err := LoadProject(cfg)
	if err == nil || err.Error() != "invalid type for field: timeoutMs (expected int)" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadProject_RejectsNonCUE(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "bdct.yaml"))
	if err == nil || err.Error() != "unsupported config format: expected .cue" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadProject_EmptyPathDefaults(t *testing.T) {
	p, err := LoadProject("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Names.Provider != "BDCT-JS-Provider" || p.VersionFile.CanIDeploy != version.PolicySkip {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestProjectPath_Precedence(t *testing.T) {
	env := Env{"BDCT_CONFIG": "from-env.cue"}
	if got := ProjectPath("flag.cue", env); got != "flag.cue" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ProjectPath("", env); got != "from-env.cue" {
		t.Fatalf("env should win, got %q", got)
	}
}

func TestLoadProject_ExampleFileMatchesDefaults(t *testing.T) {
	got, err := LoadProject(filepath.Join("..", "..", DefaultProjectFile))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultProject()) {
		t.Fatalf("example project drifted from defaults:\n got %+v\nwant %+v", got, DefaultProject())
	}
}
