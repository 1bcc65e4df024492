package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/fatih/color"

	probeuc "github.com/kailas-cloud/kbproxy/internal/usecase/probe"
)

// ProbeCommand runs the knowledge API diagnostic call.
type ProbeCommand struct {
	*Base

	flagEnv string
}

func (c *ProbeCommand) Synopsis() string {
	return "Run the knowledge API diagnostic call"
}

func (c *ProbeCommand) Help() string {
	return `Usage: kbproxyctl probe [options]

  Sends the fixed {"mid":0,"size":10} request to the knowledge API and prints
  the computed checksum, the HTTP status and the raw response.` + flagHelp(c.flags())
}

func (c *ProbeCommand) flags() *flag.FlagSet {
	return c.newFlagSet("probe", &c.flagEnv)
}

func (c *ProbeCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	cfg, ok := c.config(c.flagEnv)
	if !ok {
		return 1
	}

	report := probeuc.New(c.knowledgeClient(cfg)).Run(context.Background())

	c.UI.Output(fmt.Sprintf("URL:       %s", report.URL))
	c.UI.Output(fmt.Sprintf("Timestamp: %d", report.Timestamp))
	c.UI.Output(fmt.Sprintf("Checksum:  %s", report.Checksum))
	if report.Err != nil {
		c.UI.Error(fmt.Sprintf("probe failed: %v", report.Err))
		return 1
	}

	status := color.New(color.FgGreen, color.Bold).Sprintf("%d", report.Status)
	if !report.OK {
		status = color.New(color.FgRed, color.Bold).Sprintf("%d", report.Status)
	}
	c.UI.Output("Status:    " + status)
	c.UI.Output(report.Raw)

	if !report.OK {
		return 1
	}
	return 0
}
