package mcp

import (
	"encoding/json"

	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

// ToolParams is the typed parameter set of one endpoint.
type ToolParams interface {
	// Rules returns the cross-field predicates the parameters must satisfy.
	Rules() []Rule
	// Values returns the request parameters exactly as they are signed and sent.
	Values() upbit.Params
}

// decodeParams fills a typed parameter struct from bound arguments.
func decodeParams(bound map[string]any, target ToolParams) error {
	data, err := json.Marshal(bound)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// optional drops empty strings so they are neither signed nor sent.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NoParams is used by endpoints that take no arguments.
type NoParams struct{}

func (NoParams) Rules() []Rule        { return nil }
func (NoParams) Values() upbit.Params { return nil }

// MarketParams selects a single market for ticker and orderbook snapshots.
type MarketParams struct {
	Market string `json:"market"`
}

func (p *MarketParams) Rules() []Rule { return nil }

func (p *MarketParams) Values() upbit.Params {
	return upbit.Params{"markets": p.Market}
}

// TradesParams selects recent trades for a market.
type TradesParams struct {
	Market string `json:"market"`
	Count  *int64 `json:"count,omitempty"`
}

func (p *TradesParams) Rules() []Rule { return nil }

func (p *TradesParams) Values() upbit.Params {
	v := upbit.Params{"market": p.Market}
	if p.Count != nil {
		v["count"] = *p.Count
	}
	return v
}

// Order types.
const (
	OrdTypeLimit  = "limit"
	OrdTypePrice  = "price"
	OrdTypeMarket = "market"
)

// CreateOrderParams is the body of a new order.
type CreateOrderParams struct {
	Market      string `json:"market"`
	Side        string `json:"side"`
	OrdType     string `json:"ord_type"`
	Volume      string `json:"volume,omitempty"`
	Price       string `json:"price,omitempty"`
	TimeInForce string `json:"time_in_force,omitempty"`
	SMPType     string `json:"smp_type,omitempty"`
	Identifier  string `json:"identifier,omitempty"`
}

func (p *CreateOrderParams) Rules() []Rule {
	return []Rule{
		{
			ID:      "limit_requires_volume_and_price",
			Message: "Limit orders require both volume and price",
			Holds:   func() bool { return p.OrdType != OrdTypeLimit || (p.Volume != "" && p.Price != "") },
		},
		{
			ID:      "price_order_requires_price",
			Message: "Market buy (price) requires price",
			Holds:   func() bool { return p.OrdType != OrdTypePrice || p.Price != "" },
		},
		{
			ID:      "market_order_requires_volume",
			Message: "Market sell (market) requires volume",
			Holds:   func() bool { return p.OrdType != OrdTypeMarket || p.Volume != "" },
		},
		{
			ID:      "post_only_excludes_smp_type",
			Message: "post_only cannot be used with smp_type",
			Holds:   func() bool { return !(p.TimeInForce == "post_only" && p.SMPType != "") },
		},
	}
}

func (p *CreateOrderParams) Values() upbit.Params {
	return upbit.Params{
		"market":        p.Market,
		"side":          p.Side,
		"ord_type":      p.OrdType,
		"volume":        optional(p.Volume),
		"price":         optional(p.Price),
		"time_in_force": optional(p.TimeInForce),
		"smp_type":      optional(p.SMPType),
		"identifier":    optional(p.Identifier),
	}
}

// OrdersParams pages through orders in one state.
type OrdersParams struct {
	Market string `json:"market,omitempty"`
	State  string `json:"state"`
	Page   int64  `json:"page"`
	Limit  int64  `json:"limit"`
}

func (p *OrdersParams) Rules() []Rule { return nil }

func (p *OrdersParams) Values() upbit.Params {
	return upbit.Params{
		"market": optional(p.Market),
		"state":  p.State,
		"page":   p.Page,
		"limit":  p.Limit,
	}
}

// OrderLookupParams identifies one order by uuid or client identifier.
type OrderLookupParams struct {
	UUID       string `json:"uuid,omitempty"`
	Identifier string `json:"identifier,omitempty"`
}

func (p *OrderLookupParams) Rules() []Rule {
	return []Rule{{
		ID:      "uuid_or_identifier",
		Message: "Either uuid or identifier is required",
		Holds:   func() bool { return p.UUID != "" || p.Identifier != "" },
	}}
}

func (p *OrderLookupParams) Values() upbit.Params {
	return upbit.Params{
		"uuid":       optional(p.UUID),
		"identifier": optional(p.Identifier),
	}
}

// UUIDParams identifies one withdrawal or deposit.
type UUIDParams struct {
	UUID string `json:"uuid"`
}

func (p *UUIDParams) Rules() []Rule { return nil }

func (p *UUIDParams) Values() upbit.Params {
	return upbit.Params{"uuid": p.UUID}
}

// CreateWithdrawalParams is the body of a coin withdrawal request.
type CreateWithdrawalParams struct {
	Currency         string `json:"currency"`
	Amount           string `json:"amount"`
	Address          string `json:"address"`
	NetType          string `json:"net_type"`
	SecondaryAddress string `json:"secondary_address,omitempty"`
	TransactionType  string `json:"transaction_type,omitempty"`
}

func (p *CreateWithdrawalParams) Rules() []Rule { return nil }

func (p *CreateWithdrawalParams) Values() upbit.Params {
	return upbit.Params{
		"currency":          p.Currency,
		"amount":            p.Amount,
		"address":           p.Address,
		"net_type":          p.NetType,
		"secondary_address": optional(p.SecondaryAddress),
		"transaction_type":  optional(p.TransactionType),
	}
}

// HistoryParams pages through withdrawals or deposits.
type HistoryParams struct {
	Currency string `json:"currency,omitempty"`
	State    string `json:"state,omitempty"`
	Page     int64  `json:"page"`
	Limit    int64  `json:"limit"`
}

func (p *HistoryParams) Rules() []Rule { return nil }

func (p *HistoryParams) Values() upbit.Params {
	return upbit.Params{
		"currency": optional(p.Currency),
		"state":    optional(p.State),
		"page":     p.Page,
		"limit":    p.Limit,
	}
}

// CurrencyParams selects a currency and, where the endpoint needs one, a network.
type CurrencyParams struct {
	Currency string `json:"currency"`
	NetType  string `json:"net_type,omitempty"`
}

func (p *CurrencyParams) Rules() []Rule { return nil }

func (p *CurrencyParams) Values() upbit.Params {
	return upbit.Params{
		"currency": p.Currency,
		"net_type": optional(p.NetType),
	}
}
