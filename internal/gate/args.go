package gate

import (
	"strings"

	"github.com/nickldimartino/bdct/internal/config"
)

const redacted = "[REDACTED]"

// VerificationResultsContentType is the media type of the self-verification
// results file.
const VerificationResultsContentType = "application/json"

func brokerFlags(cfg config.DeploymentConfig) []string {
	return []string{
		"--broker-base-url", cfg.BrokerBaseURL,
		"--broker-token", cfg.BrokerToken,
	}
}

// CanIDeployArgs builds `can-i-deploy` arguments.
func CanIDeployArgs(cfg config.DeploymentConfig, version string) []string {
	args := []string{
		"can-i-deploy",
		"--pacticipant", cfg.Participant,
		"--version", version,
		"--to-environment", cfg.Environment,
	}
	return append(args, brokerFlags(cfg)...)
}

// RecordDeploymentArgs builds `record-deployment` arguments.
func RecordDeploymentArgs(cfg config.DeploymentConfig, version string) []string {
	args := []string{
		"record-deployment",
		"--pacticipant", cfg.Participant,
		"--version", version,
		"--environment", cfg.Environment,
	}
	return append(args, brokerFlags(cfg)...)
}

// PublishConsumerArgs builds `publish` arguments for the pacts in pactsDir.
// The branch doubles as the tag.
func PublishConsumerArgs(cfg config.DeploymentConfig, pactsDir, version string) []string {
	args := []string{
		"publish", pactsDir,
		"--branch", cfg.Branch,
		"--tag", cfg.Branch,
		"--consumer-app-version", version,
	}
	return append(args, brokerFlags(cfg)...)
}

// PublishProviderArgs builds `publish-provider-contract` arguments with the
// self-verification results at resultsPath.
func PublishProviderArgs(cfg config.DeploymentConfig, version, resultsPath string) []string {
	success := "false"
	if cfg.VerificationSuccess {
		success = "true"
	}
	args := []string{
		"publish-provider-contract",
		cfg.ProviderContract,
		"--provider", cfg.Participant,
		"--provider-app-version", version,
		"--branch", cfg.Branch,
		"--content-type", cfg.ContentType,
		"--verification-results", resultsPath,
		"--verification-results-content-type", VerificationResultsContentType,
		"--verification-success", success,
		"--verifier", cfg.Verifier,
		"--verifier-version", cfg.VerifierVersion,
	}
	return append(args, brokerFlags(cfg)...)
}

// TLSOverlay returns the environment overlay for cfg.
func TLSOverlay(cfg config.DeploymentConfig) map[string]string {
	if !cfg.InsecureTLS {
		return nil
	}
	return map[string]string{config.EnvDisableSSL: "true"}
}

// RedactArgs returns a copy of args with the broker token value masked.
func RedactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if i > 0 && args[i-1] == "--broker-token" {
			out[i] = redacted
			continue
		}
		out[i] = a
	}
	return out
}

// DisplayCommand renders inv for the operator with the broker token masked.
func DisplayCommand(inv Invocation) string {
	return strings.Join(append([]string{inv.Program}, RedactArgs(inv.Args)...), " ")
}
