package app

import (
	"context"
	"log/slog"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/klemjul/novachat/internal/chat"
	"github.com/klemjul/novachat/internal/format"
	"github.com/klemjul/novachat/internal/llm"
	"github.com/klemjul/novachat/internal/proxy"
	"github.com/klemjul/novachat/internal/telemetry"
	"github.com/klemjul/novachat/internal/ui"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type TUIService interface {
	InitialModel(opts ui.InitialModelOptions) ui.ChatTUIModel
	Run(model ui.ChatTUIModel) (returnModel tea.Model, returnErr error)
}

type LLMService interface {
	NewClient(provider llm.LLMProvider, opts llm.LLMClientOptions) (llm.LLMClient, error)
}

type TextFormatService interface {
	FormatMarkdown(text string, width int) (string, error)
}

type ChatService interface {
	OpenStore(kind chat.StoreKind, dir, key string) (chat.Store, error)
	NewAsker(proxyURL string) chat.Asker
}

type ProxyService interface {
	Serve(ctx context.Context, addr string, handler http.Handler) error
}

type TelemetryService interface {
	NewLogger(opts telemetry.LoggerOptions) (*slog.Logger, func(), error)
	Init(ctx context.Context, dir string) (trace.Tracer, metric.Meter, func(), error)
}

type App interface {
	TUI() TUIService
	LLM() LLMService
	Format() TextFormatService
	Chat() ChatService
	Proxy() ProxyService
	Telemetry() TelemetryService
}

type DefaultTUIService struct{}

type DefaultLLMService struct{}

type DefaultTextFormatService struct{}

type DefaultChatService struct{}

type DefaultProxyService struct{}

type DefaultTelemetryService struct{}

type DefaultApp struct {
	tui       TUIService
	llm       LLMService
	format    TextFormatService
	chat      ChatService
	proxy     ProxyService
	telemetry TelemetryService
}

func (a *DefaultApp) TUI() TUIService             { return a.tui }
func (a *DefaultApp) LLM() LLMService             { return a.llm }
func (a *DefaultApp) Format() TextFormatService   { return a.format }
func (a *DefaultApp) Chat() ChatService           { return a.chat }
func (a *DefaultApp) Proxy() ProxyService         { return a.proxy }
func (a *DefaultApp) Telemetry() TelemetryService { return a.telemetry }

func (c *DefaultTUIService) InitialModel(opts ui.InitialModelOptions) ui.ChatTUIModel {
	return ui.InitialModel(opts)
}
func (c *DefaultTUIService) Run(model ui.ChatTUIModel) (returnModel tea.Model, returnErr error) {
	return tea.NewProgram(model, tea.WithAltScreen()).Run()
}

func (l *DefaultLLMService) NewClient(provider llm.LLMProvider, opts llm.LLMClientOptions) (llm.LLMClient, error) {
	return llm.NewClient(provider, opts)
}

func (l *DefaultTextFormatService) FormatMarkdown(text string, width int) (string, error) {
	return format.FormatMarkdown(text, width)
}

func (c *DefaultChatService) OpenStore(kind chat.StoreKind, dir, key string) (chat.Store, error) {
	return chat.OpenStore(kind, dir, key)
}
func (c *DefaultChatService) NewAsker(proxyURL string) chat.Asker {
	return chat.NewProxyClient(proxyURL, nil)
}

func (p *DefaultProxyService) Serve(ctx context.Context, addr string, handler http.Handler) error {
	return proxy.Serve(ctx, addr, handler)
}

func (t *DefaultTelemetryService) NewLogger(opts telemetry.LoggerOptions) (*slog.Logger, func(), error) {
	return telemetry.NewLogger(opts)
}
func (t *DefaultTelemetryService) Init(ctx context.Context, dir string) (trace.Tracer, metric.Meter, func(), error) {
	return telemetry.InitTelemetry(ctx, dir)
}

func NewDefaultApp() App {
	return &DefaultApp{
		tui:       &DefaultTUIService{},
		llm:       &DefaultLLMService{},
		format:    &DefaultTextFormatService{},
		chat:      &DefaultChatService{},
		proxy:     &DefaultProxyService{},
		telemetry: &DefaultTelemetryService{},
	}
}
