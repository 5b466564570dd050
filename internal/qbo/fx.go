package qbo

import (
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("qbo",
	fx.Provide(NewOAuth),
	fx.Provide(NewTokenStore),
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) invoicedomain.InvoiceSource { return c }),
	fx.Provide(func(c *Client) invoicedomain.InvoiceCreator { return c }),
)
