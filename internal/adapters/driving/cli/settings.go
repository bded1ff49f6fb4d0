package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reportgen-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the retrieval backend, PDF conversion, template source
and generation options.

Settings live in config.toml in the configuration directory. Environment
variables named REPORTGEN_<SECTION>__<KEY> override them, e.g.
REPORTGEN_GENERATION__CONCURRENCY=8.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a setting",
	Long:  `Set a single setting. Run 'reportgen settings keys' for the recognised keys.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsSecretCmd = &cobra.Command{
	Use:   "secret [key]",
	Short: "Set a credential without echoing it",
	Long: `Prompt for a credential and store it. Defaults to conversion.secret,
the ConvertAPI secret used for PDF conversion.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsSecret,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSecretCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Base URL: %s\n", settings.Retrieval.BaseURL)
	cmd.Printf("  Timeout: %s\n", settings.Retrieval.Timeout)
	cmd.Println()

	cmd.Println("[Conversion]")
	cmd.Printf("  Base URL: %s\n", settings.Conversion.BaseURL)
	if settings.Conversion.Secret != "" {
		cmd.Printf("  Secret: %s\n", maskAPIKey(settings.Conversion.Secret))
	} else {
		cmd.Printf("  Secret: (not set, PDF conversion disabled)\n")
	}
	cmd.Printf("  Rate: %.1f req/s, burst %d\n", settings.Conversion.RequestsPerSecond, settings.Conversion.Burst)
	cmd.Println()

	cmd.Println("[Templates]")
	cmd.Printf("  Backend: %s\n", settings.Templates.Backend.Description())
	switch settings.Templates.Backend {
	case domain.TemplateBackendFile:
		cmd.Printf("  Directory: %s\n", settings.Templates.Dir)
	case domain.TemplateBackendHTTP:
		cmd.Printf("  Base URL: %s\n", settings.Templates.BaseURL)
	case domain.TemplateBackendDrive:
		cmd.Printf("  Folder: %s\n", settings.Templates.DriveFolderID)
		if settings.Templates.DriveAPIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Templates.DriveAPIKey))
		}
	case domain.TemplateBackendGitHub:
		cmd.Printf("  Repository: %s\n", settings.Templates.GitHubRepo)
		cmd.Printf("  Path: %s @ %s\n", settings.Templates.GitHubPath, settings.Templates.GitHubRef)
		if settings.Templates.GitHubToken != "" {
			cmd.Printf("  Token: %s\n", maskAPIKey(settings.Templates.GitHubToken))
		}
	}
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Concurrency: %d\n", settings.Generation.Concurrency)
	if settings.Generation.MaxCombinations > 0 {
		cmd.Printf("  Max combinations: %d\n", settings.Generation.MaxCombinations)
	} else {
		cmd.Printf("  Max combinations: unlimited\n")
	}
	cmd.Printf("  Keep generations: %d\n", settings.Generation.Keep)
	cmd.Println()

	cmd.Printf("Output directory: %s\n", settings.OutputDir)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'reportgen settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	if settingsService.IsSecret(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runSettingsSecret(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	key := "conversion.secret"
	if len(args) == 1 {
		key = args[0]
	}
	if !settingsService.IsSecret(key) {
		return fmt.Errorf("%s is not a credential; use 'reportgen settings set': %w", key, domain.ErrInvalidInput)
	}

	cmd.Printf("Enter %s: ", key)
	value := readPassword()
	cmd.Println()
	if value == "" {
		return fmt.Errorf("empty value for %s: %w", key, domain.ErrInvalidInput)
	}
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, maskAPIKey(value))
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(os.Stdin))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
