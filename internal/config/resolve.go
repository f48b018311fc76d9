package config

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Operation names a broker-facing subcommand.
type Operation string

const (
	OpCanIDeploy       Operation = "can-i-deploy"
	OpPublishConsumer  Operation = "publish-consumer"
	OpPublishProvider  Operation = "publish-provider"
	OpRecordDeployment Operation = "record-deployment"
)

// Recognized environment variables.
const (
	EnvBrokerBaseURL      = "PACT_BROKER_BASE_URL"
	EnvBrokerToken        = "PACT_BROKER_TOKEN"
	EnvPacticipant        = "PACTICIPANT"
	EnvProviderName       = "PROVIDER_NAME"
	EnvEnvironment        = "ENVIRONMENT"
	EnvVersion            = "VERSION"
	EnvVersionFile        = "VERSION_FILE"
	EnvGitHubSHA          = "GITHUB_SHA"
	EnvGitHubRefName      = "GITHUB_REF_NAME"
	EnvBranch             = "BRANCH"
	EnvConsumerVersion    = "CONSUMER_VERSION"
	EnvConsumerSuffix     = "CONSUMER_VERSION_SUFFIX"
	EnvProviderContract   = "PROVIDER_CONTRACT"
	EnvProviderBranch     = "PROVIDER_BRANCH"
	EnvProviderVersion    = "PROVIDER_VERSION"
	EnvProviderVerifier   = "PROVIDER_VERIFIER"
	EnvProviderVerifierV  = "PROVIDER_VERIFIER_VERSION"
	EnvProviderVerifyExit = "PROVIDER_VERIFY_EXIT_CODE"
	EnvDemoBad            = "DEMO_BAD"
	EnvDisableSSL         = "PACT_BROKER_DISABLE_SSL_VERIFICATION"
	EnvInsecureTLS        = "PACT_INSECURE_TLS"
)

const defaultEnvironment = "test"

// DeploymentConfig is the validated view of the environment for one
// operation. Fields that an operation does not use stay empty.
type DeploymentConfig struct {
	Operation     Operation
	BrokerBaseURL string
	BrokerToken   string
	Participant   string
	Environment   string
	Branch        string

	ProviderContract    string
	ContentType         string
	Verifier            string
	VerifierVersion     string
	VerificationSuccess bool

	InsecureTLS bool
}

// Resolve validates env for op. Required keys are checked in a fixed order so
// the first missing one is the one reported.
func Resolve(op Operation, env Env, project Project) (DeploymentConfig, error) {
	cfg := DeploymentConfig{Operation: op}

	base, err := env.Require(EnvBrokerBaseURL)
	if err != nil {
		return DeploymentConfig{}, err
	}
	if !isAbsoluteURL(base) {
		return DeploymentConfig{}, &ConfigError{Key: EnvBrokerBaseURL, Reason: "invalid URL"}
	}
	cfg.BrokerBaseURL = base
	if cfg.BrokerToken, err = env.Require(EnvBrokerToken); err != nil {
		return DeploymentConfig{}, err
	}
	cfg.InsecureTLS = env.IsTrue(EnvDisableSSL) || env.IsTrue(EnvInsecureTLS)

	switch op {
	case OpCanIDeploy:
		if cfg.Participant, err = env.Require(EnvPacticipant); err != nil {
			return DeploymentConfig{}, err
		}
		cfg.Environment = env.Get(EnvEnvironment, defaultEnvironment)
	case OpRecordDeployment:
		if cfg.Environment, err = env.Require(EnvEnvironment); err != nil {
			return DeploymentConfig{}, err
		}
		cfg.Participant = env.Get(EnvPacticipant, project.Names.Provider)
	case OpPublishConsumer:
		cfg.Participant = project.Names.Consumer
		cfg.Branch = firstOr(env, project.TrunkBranch, EnvBranch, EnvGitHubRefName)
	case OpPublishProvider:
		if cfg.ProviderContract, err = env.Require(EnvProviderContract); err != nil {
			return DeploymentConfig{}, err
		}
		cfg.ContentType = ContentTypeFor(cfg.ProviderContract)
		cfg.Participant = env.Get(EnvProviderName, project.Names.Provider)
		cfg.Branch = firstOr(env, project.TrunkBranch, EnvProviderBranch, EnvBranch, EnvGitHubRefName)
		cfg.Verifier = env.Get(EnvProviderVerifier, "jest")
		cfg.VerifierVersion = env.Get(EnvProviderVerifierV, "local")
		cfg.VerificationSuccess = true
		if code, ok := env[EnvProviderVerifyExit]; ok {
			cfg.VerificationSuccess = strings.TrimSpace(code) == "0"
		}
	}
	return cfg, nil
}

// ContentTypeFor maps a contract path to the media type the broker expects.
func ContentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "application/json"
	default:
		return "application/yaml"
	}
}

func firstOr(env Env, def string, keys ...string) string {
	if v, ok := env.First(keys...); ok {
		return v
	}
	return def
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
