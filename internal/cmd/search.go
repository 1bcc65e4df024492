package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/cli"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	knowledgeuc "github.com/kailas-cloud/kbproxy/internal/usecase/knowledge"
)

// SearchCommand fuzzy-matches a query against the knowledge base.
type SearchCommand struct {
	*Base

	flagEnv   string
	flagLimit int
}

func (c *SearchCommand) Synopsis() string {
	return "Search the knowledge base"
}

func (c *SearchCommand) Help() string {
	return `Usage: kbproxyctl search [options] <query>

  Fetches the knowledge base and ranks records against the query the same way
  POST /api/knowledge does.` + flagHelp(c.flags())
}

func (c *SearchCommand) flags() *flag.FlagSet {
	f := c.newFlagSet("search", &c.flagEnv)
	f.IntVar(&c.flagLimit, "limit", 0, "Maximum results (default: knowledge.max_results)")
	return f
}

func (c *SearchCommand) Run(args []string) int {
	f := c.flags()
	if err := f.Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	query := strings.Join(f.Args(), " ")
	if strings.TrimSpace(query) == "" {
		c.UI.Error("a query is required")
		return cli.RunResultHelp
	}
	cfg, ok := c.config(c.flagEnv)
	if !ok {
		return 1
	}

	limit := cfg.Knowledge.MaxResults
	if c.flagLimit > 0 {
		limit = c.flagLimit
	}
	svc := knowledgeuc.New(c.knowledgeClient(cfg)).WithLimits(cfg.Knowledge.MaxRecords, limit)

	results, err := svc.Search(context.Background(), query)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error searching knowledge: %v", err))
		return 1
	}
	if len(results) == 0 {
		c.UI.Warn("no matches")
		return 0
	}

	exact := color.New(color.FgGreen).SprintFunc()
	fuzzy := color.New(color.FgYellow).SprintFunc()
	for _, r := range results {
		kind := fuzzy(string(r.MatchType))
		if r.MatchType == domknow.MatchExact {
			kind = exact(string(r.MatchType))
		}
		c.UI.Output(fmt.Sprintf("%.3f  %-5s  %8d  %s", r.Score, kind, r.ID, r.Question))
	}
	return 0
}
