package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/klemjul/novachat/internal/app"
	"github.com/klemjul/novachat/internal/config"
	"github.com/klemjul/novachat/internal/llm"
	"github.com/klemjul/novachat/internal/proxy"
	"github.com/klemjul/novachat/internal/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func ServeCommand(app app.App) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay proxy.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, app)
		},
		PreRunE: validateServe,
	}

	flags := serveCmd.Flags()
	flags.SortFlags = false
	flags.String("addr", config.DEFAULT_ADDR,
		fmt.Sprintf("Listen address. (env: %s)", config.GetEnvWithPrefix(config.ENV_ADDR)))
	flags.String("path", config.DEFAULT_PROXY_PATH,
		fmt.Sprintf("Route the proxy is served on. (env: %s)", config.GetEnvWithPrefix(config.ENV_PROXY_PATH)))
	flags.String("provider", config.DEFAULT_PROVIDER,
		fmt.Sprintf("Upstream provider, one of %v. (env: %s)", llm.LLMProviders, config.GetEnvWithPrefix(config.ENV_PROVIDER)))
	flags.String("model", "",
		fmt.Sprintf("Model for the genai, openai and ollama providers. (env: %s)", config.GetEnvWithPrefix(config.ENV_MODEL)))
	flags.String("upstream-url", "",
		fmt.Sprintf("Endpoint of the gemini provider. (env: %s)", config.GetEnvWithPrefix(config.ENV_UPSTREAM_URL)))
	flags.String("schema", string(llm.SchemaGenerateContent),
		fmt.Sprintf("Payload schema of the gemini provider, one of %v. (env: %s)", llm.Schemas, config.GetEnvWithPrefix(config.ENV_SCHEMA)))
	flags.Bool("raw-fallback", false,
		fmt.Sprintf("Answer with the raw upstream JSON when no text is found. (env: %s)", config.GetEnvWithPrefix(config.ENV_RAW_FALLBACK)))
	flags.String("credential-env", config.DEFAULT_CREDENTIAL_ENV,
		fmt.Sprintf("Environment variable holding the upstream key. (env: %s)", config.GetEnvWithPrefix(config.ENV_CREDENTIAL_ENV)))
	flags.String("telemetry-dir", "",
		fmt.Sprintf("Export traces and metrics to files in this directory. (env: %s)", config.GetEnvWithPrefix(config.ENV_TELEMETRY_DIR)))

	viper.BindPFlag(config.ENV_ADDR, flags.Lookup("addr"))
	viper.BindPFlag(config.ENV_PROXY_PATH, flags.Lookup("path"))
	viper.BindPFlag(config.ENV_PROVIDER, flags.Lookup("provider"))
	viper.BindPFlag(config.ENV_MODEL, flags.Lookup("model"))
	viper.BindPFlag(config.ENV_UPSTREAM_URL, flags.Lookup("upstream-url"))
	viper.BindPFlag(config.ENV_SCHEMA, flags.Lookup("schema"))
	viper.BindPFlag(config.ENV_RAW_FALLBACK, flags.Lookup("raw-fallback"))
	viper.BindPFlag(config.ENV_CREDENTIAL_ENV, flags.Lookup("credential-env"))
	viper.BindPFlag(config.ENV_TELEMETRY_DIR, flags.Lookup("telemetry-dir"))

	return serveCmd
}

func validateServe(cmd *cobra.Command, args []string) error {
	provider := viper.GetString(config.ENV_PROVIDER)
	if !slices.Contains(llm.LLMProviders, llm.LLMProvider(provider)) {
		return fmt.Errorf("invalid provider '%s'. Valid providers are: %v", provider, llm.LLMProviders)
	}
	path := viper.GetString(config.ENV_PROXY_PATH)
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid proxy path '%s'. It must start with '/'", path)
	}
	if viper.GetString(config.ENV_CREDENTIAL_ENV) == "" {
		return fmt.Errorf("credential env must be specified")
	}
	return nil
}

func runServe(cmd *cobra.Command, app app.App) error {
	addr := viper.GetString(config.ENV_ADDR)
	path := viper.GetString(config.ENV_PROXY_PATH)
	provider := viper.GetString(config.ENV_PROVIDER)
	credentialEnv := viper.GetString(config.ENV_CREDENTIAL_ENV)

	logger, closeLog, err := app.Telemetry().NewLogger(telemetry.LoggerOptions{
		File:   viper.GetString(config.ENV_LOG_FILE),
		Level:  viper.GetString(config.ENV_LOG_LEVEL),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer closeLog()

	tracer, meter, shutdown, err := app.Telemetry().Init(cmd.Context(), viper.GetString(config.ENV_TELEMETRY_DIR))
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %v", err)
	}
	defer shutdown()

	client, err := app.LLM().NewClient(llm.LLMProvider(provider), llm.LLMClientOptions{
		Model:       viper.GetString(config.ENV_MODEL),
		URL:         viper.GetString(config.ENV_UPSTREAM_URL),
		Schema:      llm.Schema(viper.GetString(config.ENV_SCHEMA)),
		RawFallback: viper.GetBool(config.ENV_RAW_FALLBACK),
	})
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %v", err)
	}

	router, err := proxy.NewRouter(proxy.RouterOptions{
		Path: path,
		Handler: proxy.NewHandler(proxy.HandlerOptions{
			Upstream:      client,
			CredentialEnv: credentialEnv,
			Logger:        logger,
		}),
		Logger: logger,
		Tracer: tracer,
		Meter:  meter,
	})
	if err != nil {
		return err
	}

	logger.Info("proxy listening", "addr", addr, "path", path, "provider", provider)
	fmt.Fprintf(cmd.OutOrStdout(), "novachat proxy listening on %s%s\n", addr, path)

	if err := app.Proxy().Serve(cmd.Context(), addr, router); err != nil {
		return fmt.Errorf("proxy stopped: %v", err)
	}
	logger.Info("proxy stopped")
	return nil
}
