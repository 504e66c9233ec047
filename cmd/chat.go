package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/klemjul/novachat/internal/app"
	"github.com/klemjul/novachat/internal/chat"
	"github.com/klemjul/novachat/internal/config"
	"github.com/klemjul/novachat/internal/telemetry"
	"github.com/klemjul/novachat/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ChatCommand(app app.App) *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Chat through the proxy. With a prompt, ask once and print the answer.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args, app)
		},
	}

	flags := chatCmd.Flags()
	flags.SortFlags = false
	flags.String("proxy-url", config.DEFAULT_PROXY_URL,
		fmt.Sprintf("Proxy endpoint prompts are posted to. (env: %s)", config.GetEnvWithPrefix(config.ENV_PROXY_URL)))
	flags.String("options", "",
		fmt.Sprintf(`Generation options as a JSON object, e.g. '{"temperature":0.2}'. (env: %s)`, config.GetEnvWithPrefix(config.ENV_OPTIONS)))
	flags.StringArray("preset", nil, "Preset prompt bound to F1..F9, repeatable. Defaults to built-in presets.")

	viper.BindPFlag(config.ENV_PROXY_URL, flags.Lookup("proxy-url"))
	viper.BindPFlag(config.ENV_OPTIONS, flags.Lookup("options"))

	return chatCmd
}

func runChat(cmd *cobra.Command, args []string, app app.App) error {
	options, err := parseOptions(viper.GetString(config.ENV_OPTIONS))
	if err != nil {
		return err
	}

	logger, closeLog, err := chatLogger(app)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := openStore(app)
	if err != nil {
		return err
	}
	defer store.Close()

	history := chat.NewHistory(store, logger)
	asker := app.Chat().NewAsker(viper.GetString(config.ENV_PROXY_URL))

	if len(args) > 0 {
		session := chat.NewSession(chat.SessionOptions{
			History:    history,
			Transcript: ui.NewPrintTranscript(cmd.OutOrStdout(), markdownRenderer(app)),
			Asker:      asker,
			Options:    options,
			Logger:     logger,
		})
		if _, err := session.Exchange(cmd.Context(), strings.Join(args, " ")); err != nil {
			return fmt.Errorf("failed to generate response: %v", err)
		}
		return nil
	}

	presets := chat.DefaultPresets
	if custom, err := cmd.Flags().GetStringArray("preset"); err == nil && len(custom) > 0 {
		presets = custom
	}

	transcript := ui.NewTranscript()
	session := chat.NewSession(chat.SessionOptions{
		History:    history,
		Transcript: transcript,
		Asker:      asker,
		Options:    options,
		Logger:     logger,
	})
	session.Load()

	model := app.TUI().InitialModel(ui.InitialModelOptions{
		Context:    cmd.Context(),
		Title:      fmt.Sprintf("Nova Chat (%s)", viper.GetString(config.ENV_PROXY_URL)),
		Session:    session,
		Transcript: transcript,
		Presets:    presets,
	})
	if _, err := app.TUI().Run(model); err != nil {
		return fmt.Errorf("error running interactive mode: %v", err)
	}
	return nil
}

func parseOptions(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var options map[string]any
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, fmt.Errorf("invalid options, expected a JSON object: %v", err)
	}
	return options, nil
}

// chatLogger always writes to a file so log lines never mix with the chat.
func chatLogger(app app.App) (*slog.Logger, func(), error) {
	file := viper.GetString(config.ENV_LOG_FILE)
	if file == "" {
		file = filepath.Join(viper.GetString(config.ENV_DATA_DIR), config.CHAT_LOG_FILE_NAME)
	}
	return app.Telemetry().NewLogger(telemetry.LoggerOptions{
		File:  file,
		Level: viper.GetString(config.ENV_LOG_LEVEL),
	})
}

func openStore(app app.App) (chat.Store, error) {
	store, err := app.Chat().OpenStore(
		chat.StoreKind(viper.GetString(config.ENV_STORE)),
		viper.GetString(config.ENV_DATA_DIR),
		viper.GetString(config.ENV_STORAGE_KEY),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %v", err)
	}
	return store, nil
}

func markdownRenderer(app app.App) func(string) (string, error) {
	return func(text string) (string, error) {
		return app.Format().FormatMarkdown(text, 0)
	}
}
