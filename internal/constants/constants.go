package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "greenscan"

	// DefaultConfigFileName is the config file written by `greenscan init`
	DefaultConfigFileName = "greenscan.yaml"

	// ConfigEnvVar points at a config file when no other location matches
	ConfigEnvVar = "GREENSCAN_CONFIG"
)

// ConfigFileCandidates are the config file names searched for, in order of
// preference, when no explicit path is given.
var ConfigFileCandidates = []string{
	"greenscan.yaml",
	"greenscan.yml",
	".greenscan.toml",
	".greenscan.yml",
	"greenscan.json",
	".greenscan.json",
}
