package config

import (
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"github.com/nickldimartino/bdct/internal/version"
)

const CurrentConfigVersion = "1"

var SupportedConfigVersions = []string{CurrentConfigVersion}

// DefaultProjectFile is picked up from the working directory when no path
// is given.
const DefaultProjectFile = "bdct.cue"

// Project holds repository-level defaults read from an optional CUE file.
type Project struct {
	ConfigVersion string
	Names         Names
	TrunkBranch   string
	ScratchDir    string
	PactsDir      string
	Commands      Commands
	VersionFile   VersionFilePolicies
	// TimeoutMs bounds the external command; zero waits forever.
	TimeoutMs int
	OpenAPI   OpenAPI
}

// Names are the participant defaults used when the environment has none.
type Names struct {
	Provider string
	Consumer string
}

// Commands are the external executables invoked by the broker operations.
type Commands struct {
	Broker   string
	Pactflow string
}

// VersionFilePolicies decide, per operation, whether an unreadable
// VERSION_FILE aborts the run or is skipped.
type VersionFilePolicies struct {
	CanIDeploy       version.Policy
	RecordDeployment version.Policy
}

// OpenAPI configures generate-openapi.
type OpenAPI struct {
	Sources     []string
	Output      string
	Transform   string
	TransformMs int
}

// DefaultProject returns the settings used when no project file exists.
func DefaultProject() Project {
	return Project{
		ConfigVersion: CurrentConfigVersion,
		Names:         Names{Provider: "BDCT-JS-Provider", Consumer: "BDCT-JS-Consumer"},
		TrunkBranch:   "main",
		ScratchDir:    "tmp",
		PactsDir:      "./pacts",
		Commands:      Commands{Broker: "pact-broker", Pactflow: "pactflow"},
		VersionFile: VersionFilePolicies{
			CanIDeploy:       version.PolicySkip,
			RecordDeployment: version.PolicyFail,
		},
		OpenAPI: OpenAPI{
			Sources:     []string{"internal/provider"},
			Output:      "openapi/provider.generated.yaml",
			TransformMs: 1000,
		},
	}
}

// ProjectPath picks the project file: explicit flag, then BDCT_CONFIG, then
// bdct.cue when it exists. An empty result means defaults only.
func ProjectPath(flag string, env Env) string {
	if flag != "" {
		return flag
	}
	if p, ok := env.Lookup("BDCT_CONFIG"); ok {
		return p
	}
	if _, err := os.Stat(DefaultProjectFile); err == nil {
		return DefaultProjectFile
	}
	return ""
}

// LoadProject reads a CUE project file on top of DefaultProject. An empty
// path returns the defaults.
func LoadProject(path string) (Project, error) {
	p := DefaultProject()
	if path == "" {
		return p, nil
	}
	v, err := compileCUE(path)
	if err != nil {
		return Project{}, err
	}
	cv, err := requireStringField(v, "configVersion")
	if err != nil {
		return Project{}, err
	}
	if !isSupportedConfigVersion(cv) {
		return Project{}, fmt.Errorf("unsupported configVersion: %q (supported: %s)", cv, strings.Join(SupportedConfigVersions, ", "))
	}
	p.ConfigVersion = cv

	fields := []struct {
		name string
		dst  *string
	}{
		{"names.provider", &p.Names.Provider},
		{"names.consumer", &p.Names.Consumer},
		{"trunkBranch", &p.TrunkBranch},
		{"scratchDir", &p.ScratchDir},
		{"pactsDir", &p.PactsDir},
		{"commands.broker", &p.Commands.Broker},
		{"commands.pactflow", &p.Commands.Pactflow},
		{"openapi.output", &p.OpenAPI.Output},
		{"openapi.transform", &p.OpenAPI.Transform},
	}
	for _, f := range fields {
		if err := optString(v, f.name, f.dst); err != nil {
			return Project{}, err
		}
	}
	if err := optInt(v, "timeoutMs", &p.TimeoutMs); err != nil {
		return Project{}, err
	}
	if p.TimeoutMs < 0 {
		return Project{}, fmt.Errorf("invalid value for timeoutMs: must be >= 0")
	}
	if err := optInt(v, "openapi.transformTimeoutMs", &p.OpenAPI.TransformMs); err != nil {
		return Project{}, err
	}
	if err := optStringList(v, "openapi.sources", &p.OpenAPI.Sources); err != nil {
		return Project{}, err
	}
	if err := parseVersionFilePolicy(v, "versionFile.canIDeploy", &p.VersionFile.CanIDeploy); err != nil {
		return Project{}, err
	}
	if err := parseVersionFilePolicy(v, "versionFile.recordDeployment", &p.VersionFile.RecordDeployment); err != nil {
		return Project{}, err
	}
	return p, nil
}

func isSupportedConfigVersion(v string) bool {
	for _, s := range SupportedConfigVersions {
		if v == s {
			return true
		}
	}
	return false
}

func parseVersionFilePolicy(v cue.Value, name string, dst *version.Policy) error {
	var raw string
	if err := optString(v, name, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	pol, err := version.ParsePolicy(raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q (expected fail or skip)", name, raw)
	}
	*dst = pol
	return nil
}
