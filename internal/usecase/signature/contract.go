package signature

import "context"

// TicketSource obtains WeCom credentials. Every call goes to the vendor.
type TicketSource interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetJSAPITicket(ctx context.Context, accessToken string) (string, error)
	CorpID() string
	Configured() bool
}
