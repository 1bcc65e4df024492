// Package kbproxy embeds the knowledge-base proxy and JS-SDK signer in a Go program
// without running the HTTP server.
//
//	client, _ := kbproxy.New(
//	    kbproxy.WithKnowledgeCredentials(os.Getenv("APP_KEY"), os.Getenv("APP_SECRET")),
//	    kbproxy.WithCorpCredentials(os.Getenv("CORP_ID"), os.Getenv("CORP_SECRET")),
//	)
//	matches, _ := client.Search(ctx, "refund")
//	sig, _ := client.Sign(ctx, "https://example.com/page", "nonce", "1700000000")
//
// Every call goes to the vendors; nothing is cached.
package kbproxy
