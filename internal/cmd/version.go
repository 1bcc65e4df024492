package cmd

import "github.com/kailas-cloud/kbproxy/internal/version"

// VersionCommand prints build metadata.
type VersionCommand struct {
	*Base
}

func (c *VersionCommand) Synopsis() string { return "Print the version" }

func (c *VersionCommand) Help() string { return "Usage: kbproxyctl version" }

func (c *VersionCommand) Run(_ []string) int {
	c.UI.Output(version.String())
	return 0
}
