package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/klemjul/novachat/internal/app"
	"github.com/klemjul/novachat/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func RootCommand(app app.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "novachat",
		Short: "Chat with a generative language model through a small relay proxy.",
		Example: `
novachat serve                          # Run the proxy on :8888
novachat chat                           # Open the chat UI against the local proxy
novachat chat "What is a goroutine?"    # Ask once and print the answer
novachat history --clear                # Forget the stored conversation
	`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.SortFlags = false
	flags.String("config", "", "Config file (yaml, toml or json).")
	flags.String("log-file", "",
		fmt.Sprintf("Write rotated JSON logs to this file. (env: %s)", config.GetEnvWithPrefix(config.ENV_LOG_FILE)))
	flags.String("log-level", config.DEFAULT_LOG_LEVEL,
		fmt.Sprintf("Log level: debug, info, warn or error. (env: %s)", config.GetEnvWithPrefix(config.ENV_LOG_LEVEL)))
	flags.String("store", config.DEFAULT_STORE,
		fmt.Sprintf("History store: file or sqlite. (env: %s)", config.GetEnvWithPrefix(config.ENV_STORE)))
	flags.String("data-dir", config.DefaultDataDir(),
		fmt.Sprintf("Directory holding history and chat logs. (env: %s)", config.GetEnvWithPrefix(config.ENV_DATA_DIR)))
	flags.String("storage-key", config.DEFAULT_STORAGE_KEY,
		fmt.Sprintf("Key the history is stored under. (env: %s)", config.GetEnvWithPrefix(config.ENV_STORAGE_KEY)))

	viper.BindPFlag(config.ENV_LOG_FILE, flags.Lookup("log-file"))
	viper.BindPFlag(config.ENV_LOG_LEVEL, flags.Lookup("log-level"))
	viper.BindPFlag(config.ENV_STORE, flags.Lookup("store"))
	viper.BindPFlag(config.ENV_DATA_DIR, flags.Lookup("data-dir"))
	viper.BindPFlag(config.ENV_STORAGE_KEY, flags.Lookup("storage-key"))

	viper.SetEnvPrefix(config.ENV_PREFIX)
	viper.AutomaticEnv()

	rootCmd.AddCommand(
		ServeCommand(app),
		ChatCommand(app),
		HistoryCommand(app),
	)

	return rootCmd
}

// loadConfig reads .env from the working directory, then the optional config
// file. Environment variables already set win over .env entries.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil || cfgFile == "" {
		return nil
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}
