package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"

	knowledgeuc "github.com/kailas-cloud/kbproxy/internal/usecase/knowledge"
)

// ListCommand fetches the whole knowledge base.
type ListCommand struct {
	*Base

	flagEnv  string
	flagShow int
}

func (c *ListCommand) Synopsis() string {
	return "Fetch every knowledge record and print a summary"
}

func (c *ListCommand) Help() string {
	return `Usage: kbproxyctl list [options]

  Pages through the knowledge API exactly like GET /api/knowledge and prints
  the record count followed by the first records.` + flagHelp(c.flags())
}

func (c *ListCommand) flags() *flag.FlagSet {
	f := c.newFlagSet("list", &c.flagEnv)
	f.IntVar(&c.flagShow, "n", 20, "Number of records to print")
	return f
}

func (c *ListCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	cfg, ok := c.config(c.flagEnv)
	if !ok {
		return 1
	}

	svc := knowledgeuc.New(c.knowledgeClient(cfg)).
		WithLimits(cfg.Knowledge.MaxRecords, cfg.Knowledge.MaxResults)
	records, err := svc.FetchAll(context.Background())
	if err != nil {
		c.UI.Error(fmt.Sprintf("error fetching knowledge: %v", err))
		return 1
	}

	c.UI.Output(color.New(color.Bold).Sprintf("%d records", len(records)))
	for i, rec := range records {
		if i >= c.flagShow {
			c.UI.Output(fmt.Sprintf("... %d more", len(records)-i))
			break
		}
		c.UI.Output(fmt.Sprintf("%8d  %s", rec.ID, rec.Question))
	}
	return 0
}
