package config

import "os/exec"

// Inspection is the JSON document printed by `prpilot config`. It exposes
// the merge result and the per-host/per-provider resolution verbatim, so a
// user can see exactly what a review run would do. Secret values never
// appear here, only source labels and resolved flags.
type Inspection struct {
	SearchedPaths     []string                      `json:"searched_paths"`
	LoadedPaths       []string                      `json:"loaded_paths"`
	Defaults          Defaults                      `json:"defaults"`
	EffectiveDefaults EffectiveDefaults             `json:"effective_defaults"`
	Hosts             map[string]HostInspection     `json:"hosts"`
	Providers         map[string]ProviderInspection `json:"providers"`
}

// EffectiveDefaults shows the defaults after fallback values are applied.
type EffectiveDefaults struct {
	MaxDiffBytes      int    `json:"max_diff_bytes"`
	SystemPrompt      string `json:"system_prompt"`
	ReviewGuidePath   string `json:"review_guide_path,omitempty"`
	CommentLanguage   string `json:"comment_language"`
	UpdateCheckURL    string `json:"update_check_url,omitempty"`
	UpdateDownloadURL string `json:"update_download_url,omitempty"`
	UpdateTimeoutMS   int64  `json:"update_timeout_ms"`
}

// HostInspection shows token resolution for one host.
type HostInspection struct {
	TokenSource   string `json:"token_source,omitempty"`
	TokenResolved bool   `json:"token_resolved"`
	APIBase       string `json:"api_base,omitempty"`
}

// ProviderInspection shows mode resolution for one provider.
type ProviderInspection struct {
	Enabled          bool     `json:"enabled"`
	ResolvedMode     string   `json:"resolved_mode"`
	Runnable         bool     `json:"runnable"`
	Command          string   `json:"command"`
	Args             []string `json:"args"`
	UseStdin         bool     `json:"use_stdin"`
	CommandAvailable bool     `json:"command_available"`
	APIKeySource     string   `json:"api_key_source,omitempty"`
	APIKeyResolved   bool     `json:"api_key_resolved"`
}

// Inspect builds the inspection view from a merge result. lookPath is
// injectable for tests; pass nil to use exec.LookPath.
func Inspect(loaded Loaded, lookPath func(string) (string, error)) Inspection {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	cfg := &loaded.Config

	hosts := make(map[string]HostInspection, len(cfg.Hosts))
	for host, hc := range cfg.Hosts {
		res := ResolveHostToken(hc, true)
		hi := HostInspection{
			TokenSource:   res.Source,
			TokenResolved: res.Resolved(),
		}
		if hc.APIBase != nil {
			hi.APIBase = *hc.APIBase
		}
		hosts[host] = hi
	}

	providers := make(map[string]ProviderInspection, len(knownProviders))
	for _, id := range knownProviders {
		providers[id] = inspectProvider(id, cfg.Providers[id], lookPath)
	}

	ed := EffectiveDefaults{
		MaxDiffBytes:    cfg.MaxDiffBytes(),
		SystemPrompt:    cfg.SystemPrompt(),
		ReviewGuidePath: cfg.ReviewGuidePath(),
		CommentLanguage: string(cfg.CommentLanguage()),
		UpdateTimeoutMS: DefaultUpdateTimeoutMS,
	}
	if cfg.Defaults.UpdateCheckURL != nil {
		ed.UpdateCheckURL = *cfg.Defaults.UpdateCheckURL
	}
	if cfg.Defaults.UpdateDownloadURL != nil {
		ed.UpdateDownloadURL = *cfg.Defaults.UpdateDownloadURL
	}
	if cfg.Defaults.UpdateTimeoutMS != nil {
		ed.UpdateTimeoutMS = *cfg.Defaults.UpdateTimeoutMS
	}

	return Inspection{
		SearchedPaths:     append([]string(nil), loaded.SearchedPaths...),
		LoadedPaths:       append([]string(nil), loaded.LoadedPaths...),
		Defaults:          cfg.Defaults,
		EffectiveDefaults: ed,
		Hosts:             hosts,
		Providers:         providers,
	}
}

func inspectProvider(id string, pc ProviderConfig, lookPath func(string) (string, error)) ProviderInspection {
	enabled := pc.IsEnabled()
	key := ResolveProviderAPIKey(pc)
	command := pc.CommandName(id)

	_, lookErr := lookPath(command)
	commandAvailable := lookErr == nil

	mode := "disabled"
	if enabled {
		if key.Resolved() {
			mode = string(ModeAPI)
		} else {
			mode = string(ModeCLI)
		}
	}

	args := pc.Args
	if args == nil {
		args = []string{}
	}

	return ProviderInspection{
		Enabled:          enabled,
		ResolvedMode:     mode,
		Runnable:         enabled && (key.Resolved() || commandAvailable),
		Command:          command,
		Args:             args,
		UseStdin:         pc.StdinEnabled(),
		CommandAvailable: commandAvailable,
		APIKeySource:     key.Source,
		APIKeyResolved:   key.Resolved(),
	}
}
