package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/cli"

	domsig "github.com/kailas-cloud/kbproxy/internal/domain/signature"
	signatureuc "github.com/kailas-cloud/kbproxy/internal/usecase/signature"
)

// SignCommand computes a JS-SDK signature for a page URL.
type SignCommand struct {
	*Base

	flagEnv       string
	flagURL       string
	flagNonceStr  string
	flagTimestamp string

	now func() time.Time
}

func (c *SignCommand) Synopsis() string {
	return "Compute a JS-SDK signature"
}

func (c *SignCommand) Help() string {
	return `Usage: kbproxyctl sign -url=<page url> [options]

  Fetches an access token and jsapi ticket and prints the signature JSON that
  POST /api/signature would return. noncestr and timestamp are generated when
  omitted.` + flagHelp(c.flags())
}

func (c *SignCommand) flags() *flag.FlagSet {
	f := c.newFlagSet("sign", &c.flagEnv)
	f.StringVar(&c.flagURL, "url", "", "(Required) Page URL to sign")
	f.StringVar(&c.flagNonceStr, "noncestr", "", "Nonce (default: random)")
	f.StringVar(&c.flagTimestamp, "timestamp", "", "Unix seconds (default: now)")
	return f
}

func (c *SignCommand) Run(args []string) int {
	if err := c.flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagURL == "" {
		c.UI.Error("url flag is required")
		return cli.RunResultHelp
	}
	cfg, ok := c.config(c.flagEnv)
	if !ok {
		return 1
	}

	nonce := c.flagNonceStr
	if nonce == "" {
		nonce = newNonce()
	}
	ts := c.flagTimestamp
	if ts == "" {
		now := time.Now
		if c.now != nil {
			now = c.now
		}
		ts = strconv.FormatInt(now().Unix(), 10)
	}

	res, err := signatureuc.New(c.wecomClient(cfg)).Sign(context.Background(), domsig.Request{
		URL:       c.flagURL,
		NonceStr:  nonce,
		Timestamp: domsig.NewFlexString(ts),
	})
	if err != nil {
		c.UI.Error(fmt.Sprintf("error signing: %v", err))
		return 1
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		c.UI.Error(fmt.Sprintf("error encoding result: %v", err))
		return 1
	}
	c.UI.Output(string(out))
	return 0
}

// newNonce returns 16 random hex characters.
func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
