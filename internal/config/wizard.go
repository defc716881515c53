package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .concierge.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to concierge! Let's set up your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	modelPrompt := promptui.Select{
		Label: "Select classifier model",
		Items: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "other (OpenAI-compatible)"},
	}
	idx, model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model selection: %w", err)
	}
	if idx == 3 {
		namePrompt := promptui.Prompt{Label: "Model name"}
		model, err = namePrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("model name: %w", err)
		}
		urlPrompt := promptui.Prompt{Label: "Base URL (OpenAI-compatible endpoint)"}
		cfg.BaseURL, err = urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("base URL: %w", err)
		}
	}
	cfg.Model = model

	dbPrompt := promptui.Prompt{Label: "Database path", Default: cfg.DBPath}
	if cfg.DBPath, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}

	portPrompt := promptui.Prompt{
		Label:   "Server port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	remotePrompt := promptui.Prompt{
		Label:   "Remote sync URL (empty for offline)",
		Default: "",
	}
	if cfg.RemoteSyncURL, err = remotePrompt.Run(); err != nil {
		return nil, fmt.Errorf("remote sync URL: %w", err)
	}

	speechPrompt := promptui.Select{
		Label: "Is this a speech-capable host (notifications, spoken replies)?",
		Items: []string{"no", "yes"},
	}
	speechIdx, _, err := speechPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("speech host: %w", err)
	}
	cfg.SpeechHost = speechIdx == 1

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(DefaultConfigFile); err != nil {
		return nil, err
	}
	fmt.Printf("\nSaved configuration to %s\n", DefaultConfigFile)
	return cfg, nil
}
