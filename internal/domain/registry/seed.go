package registry

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/utils"
)

// SeedPattern selects fixture files inside a seed directory
const SeedPattern = "**/*.{yaml,yml,toml,json}"

// DefaultSeed returns the built-in records used when no snapshot exists
func DefaultSeed() []types.AgentInput {
	return []types.AgentInput{
		{
			Name:         "Data Analyst",
			Description:  "Summarises tabular data and produces charts on request",
			Version:      "2.1.0",
			Type:         "analytics",
			Capabilities: []string{"analytics", "visualization", "csv"},
			Status:       types.StatusActive,
			Config: &types.AgentConfig{
				Permissions: []string{"read:datasets", "write:reports"},
				UserBinding: types.UserBinding{
					Method:              types.BindingSSO,
					Strength:            types.StrengthMedium,
					VerificationCadence: "daily",
				},
			},
			Ledger: &types.LedgerAnchor{
				OnChain:            true,
				NetworkID:          "testnet",
				BlockHeight:        1024,
				TxHash:             "0x5eed000000000000000000000000000000000000000000000000000000000001",
				VerificationStatus: types.VerificationVerified,
				SyncStatus:         types.SyncSynced,
			},
			Stats: &types.AgentStats{Rating: 4.6, Reviews: 128, Executions: 5400, SuccessRate: 0.97},
			Metadata: &types.AgentMetadata{
				Tags:          []string{"data", "reporting"},
				Categories:    []string{"business"},
				SecurityLevel: "standard",
				Compliance:    []string{"gdpr"},
			},
		},
		{
			Name:         "Security Sentinel",
			Description:  "Watches access logs and flags anomalous sign-ins",
			Version:      "1.4.2",
			Type:         "security",
			Capabilities: []string{"security", "monitoring", "alerting"},
			Status:       types.StatusActive,
			Config: &types.AgentConfig{
				Permissions: []string{"read:logs", "write:alerts"},
				UserBinding: types.UserBinding{
					Method:              types.BindingHardware,
					Strength:            types.StrengthStrong,
					VerificationCadence: "per_session",
				},
			},
			Stats: &types.AgentStats{Rating: 4.8, Reviews: 64, Executions: 12000, SuccessRate: 0.99},
			Metadata: &types.AgentMetadata{
				Tags:          []string{"siem", "audit"},
				Categories:    []string{"security"},
				SecurityLevel: "high",
				Compliance:    []string{"soc2", "iso27001"},
			},
		},
		{
			Name:         "Support Concierge",
			Description:  "Answers customer questions from the knowledge base",
			Version:      "0.9.0",
			Type:         "assistant",
			Capabilities: []string{"chat", "retrieval"},
			Status:       types.StatusInactive,
			Stats:        &types.AgentStats{Rating: 3.9, Reviews: 22, Executions: 800, SuccessRate: 0.88},
			Metadata: &types.AgentMetadata{
				Tags:       []string{"customer", "faq"},
				Categories: []string{"support"},
			},
		},
		{
			Name:         "Release Scribe",
			Description:  "Drafts release notes from merged pull requests",
			Type:         "automation",
			Capabilities: []string{"summarization", "git"},
			Status:       types.StatusDraft,
			Metadata: &types.AgentMetadata{
				Tags:       []string{"devops"},
				Categories: []string{"engineering"},
			},
		},
		{
			Name:         "Legacy Translator",
			Description:  "Translates documents between European languages",
			Version:      "3.0.1",
			Type:         "language",
			Capabilities: []string{"translation"},
			Status:       types.StatusDeprecated,
			Stats:        &types.AgentStats{Rating: 3.1, Reviews: 310, Executions: 45000, SuccessRate: 0.91},
			Metadata: &types.AgentMetadata{
				Tags:       []string{"i18n"},
				Categories: []string{"content"},
			},
		},
	}
}

// LoadSeedDir reads agent fixtures from every YAML, TOML or JSON file under
// dir. A file holds either one agent, a list of agents, or an object with
// an "agents" list. Files are read in lexical order.
func LoadSeedDir(dir string) ([]types.AgentInput, error) {
	return LoadSeedFS(os.DirFS(dir))
}

// LoadSeedFS is LoadSeedDir over an fs.FS
func LoadSeedFS(fsys fs.FS) ([]types.AgentInput, error) {
	matches, err := doublestar.Glob(fsys, SeedPattern)
	if err != nil {
		return nil, fmt.Errorf("glob seed files: %w", err)
	}
	sort.Strings(matches)

	var inputs []types.AgentInput
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		parsed, err := ParseSeed(name, data)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, parsed...)
	}
	return inputs, nil
}

// ParseSeed decodes one fixture file; the format follows the extension.
// Files in a legacy single-byte encoding are transcoded to UTF-8 first.
func ParseSeed(name string, data []byte) ([]types.AgentInput, error) {
	data, err := utils.ToUTF8(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	var generic any
	switch path.Ext(name) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &generic)
	case ".toml":
		var table map[string]any
		err = toml.Unmarshal(data, &table)
		generic = table
	case ".json":
		err = json.Unmarshal(data, &generic)
	default:
		return nil, fmt.Errorf("unsupported seed format: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	items := seedItems(generic)
	inputs := make([]types.AgentInput, 0, len(items))
	for i, item := range items {
		// Round trip through JSON so every format shares the json tags
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		var in types.AgentInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func seedItems(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case map[string]any:
		if list, ok := val["agents"].([]any); ok {
			return list
		}
		return []any{val}
	default:
		return nil
	}
}
