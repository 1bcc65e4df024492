package cmd

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/cli"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kbproxy/internal/config"
	"github.com/kailas-cloud/kbproxy/internal/transport/qiyu"
	"github.com/kailas-cloud/kbproxy/internal/transport/wecom"
)

// Base carries what every command needs.
type Base struct {
	UI     cli.Ui
	Logger *zap.Logger

	loadConfig func(env string) (config.Config, error)
	qiyuURL    string
	wecomURL   string
}

// NewBase creates a Base that reads config/<env>.yaml.
func NewBase(ui cli.Ui, logger *zap.Logger) *Base {
	return &Base{UI: ui, Logger: logger, loadConfig: config.Load}
}

// newFlagSet returns a flag set with the shared -env flag bound to env.
func (b *Base) newFlagSet(name string, env *string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.StringVar(env, "env", config.GetEnv(), "Config environment (reads config/<env>.yaml)")
	return f
}

func (b *Base) config(env string) (config.Config, bool) {
	cfg, err := b.loadConfig(env)
	if err != nil {
		b.UI.Error(fmt.Sprintf("error loading config: %v", err))
		return config.Config{}, false
	}
	return cfg, true
}

func (b *Base) knowledgeClient(cfg config.Config) *qiyu.Client {
	return qiyu.NewClient(&qiyu.Config{
		AppKey:    cfg.Knowledge.AppKey,
		AppSecret: cfg.Knowledge.AppSecret,
		BaseURL:   b.qiyuURL,
		Logger:    b.Logger,
	})
}

func (b *Base) wecomClient(cfg config.Config) *wecom.Client {
	return wecom.NewClient(&wecom.Config{
		CorpID:     cfg.Signature.CorpID,
		CorpSecret: cfg.Signature.CorpSecret,
		BaseURL:    b.wecomURL,
		Logger:     b.Logger,
	})
}

// flagHelp renders the defaults of f for Help().
func flagHelp(f *flag.FlagSet) string {
	var sb strings.Builder
	sb.WriteString("\n\nOptions:\n\n")
	f.VisitAll(func(fl *flag.Flag) {
		fmt.Fprintf(&sb, "  -%s=%q\n      %s\n\n", fl.Name, fl.DefValue, fl.Usage)
	})
	return strings.TrimRight(sb.String(), "\n")
}
