package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/upbit-mcp/internal/upbit"
)

func ptr64(n int64) *int64 { return &n }

var (
	marketParam = CatalogParam{
		Name:        "market",
		Type:        "string",
		Description: "Upbit market code, e.g., KRW-BTC",
		Required:    true,
		MinLength:   3,
	}
	pageParam = CatalogParam{
		Name:        "page",
		Type:        "integer",
		Description: "Page number, starting at 1",
		Default:     int64(1),
		Min:         ptr64(1),
	}
	currencyParam = CatalogParam{
		Name:        "currency",
		Type:        "string",
		Description: "Currency code, e.g., BTC",
		Required:    true,
	}
	netTypeParam = CatalogParam{
		Name:        "net_type",
		Type:        "string",
		Description: "Network type, e.g., BTC or ETH",
		Required:    true,
	}
	uuidParam = CatalogParam{
		Name:        "uuid",
		Type:        "string",
		Description: "Unique identifier assigned by Upbit",
		Required:    true,
		MinLength:   1,
	}
)

func limitParam(def int64) CatalogParam {
	return CatalogParam{
		Name:        "limit",
		Type:        "integer",
		Description: "Number of items per page (1-100)",
		Default:     def,
		Min:         ptr64(1),
		Max:         ptr64(100),
	}
}

func optionalParam(p CatalogParam) CatalogParam {
	p.Required = false
	return p
}

// lookupParams are shared by GET_ORDER and CANCEL_ORDER.
var lookupParams = []CatalogParam{
	{Name: "uuid", Type: "string", Description: "Order UUID"},
	{Name: "identifier", Type: "string", Description: "Client-assigned order identifier"},
}

// historyParams are shared by LIST_WITHDRAWALS and LIST_DEPOSITS.
var historyParams = []CatalogParam{
	optionalParam(currencyParam),
	{Name: "state", Type: "string", Description: "Filter by state"},
	pageParam,
	limitParam(50),
}

// Catalog returns every exposed tool, public market data first.
func Catalog() []CatalogTool {
	return []CatalogTool{
		{
			Name:        "GET_TICKER",
			Description: "Get the latest ticker data from Upbit for a single market",
			Method:      http.MethodGet,
			Path:        "/ticker",
			Params:      []CatalogParam{marketParam},
			Unwrap:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray, Required: []string{"market"}},
			newParams:   func() ToolParams { return &MarketParams{} },
		},
		{
			Name:        "GET_ORDERBOOK",
			Description: "Get orderbook snapshot for a given market",
			Method:      http.MethodGet,
			Path:        "/orderbook",
			Params:      []CatalogParam{marketParam},
			Unwrap:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray, Required: []string{"market"}},
			newParams:   func() ToolParams { return &MarketParams{} },
		},
		{
			Name:        "GET_TRADES",
			Description: "Get recent trades for a market",
			Method:      http.MethodGet,
			Path:        "/trades/ticks",
			Params: []CatalogParam{
				marketParam,
				{Name: "count", Type: "integer", Description: "Number of trades to return (1-500)", Min: ptr64(1), Max: ptr64(500)},
			},
			Shape:     upbit.Shape{Kind: upbit.ShapeArray},
			newParams: func() ToolParams { return &TradesParams{} },
		},
		{
			Name:        "GET_ACCOUNTS",
			Description: "Get Upbit account balances (requires private API enabled)",
			Method:      http.MethodGet,
			Path:        "/accounts",
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray, Required: []string{"currency"}},
			newParams:   func() ToolParams { return &NoParams{} },
		},
		{
			Name:        "CREATE_ORDER",
			Description: "Create an Upbit order (requires private API)",
			Method:      http.MethodPost,
			Path:        "/orders",
			Params: []CatalogParam{
				{Name: "market", Type: "string", Description: "Market code, e.g., KRW-BTC", Required: true},
				{Name: "side", Type: "string", Description: "bid (buy) or ask (sell)", Required: true, Enum: []string{"bid", "ask"}},
				{Name: "ord_type", Type: "string", Description: "limit, price (market buy) or market (market sell)", Required: true, Enum: []string{OrdTypeLimit, OrdTypePrice, OrdTypeMarket}},
				{Name: "volume", Type: "string", Description: "Order volume", Format: "decimal"},
				{Name: "price", Type: "string", Description: "Order price, or total spend for a market buy", Format: "decimal"},
				{Name: "time_in_force", Type: "string", Description: "Order execution condition", Enum: []string{"ioc", "fok", "post_only"}},
				{Name: "smp_type", Type: "string", Description: "Self-match prevention mode", Enum: []string{"cancel_maker", "cancel_taker", "reduce"}},
				{Name: "identifier", Type: "string", Description: "Client-assigned order identifier"},
			},
			Private:   true,
			Shape:     upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams: func() ToolParams { return &CreateOrderParams{} },
		},
		{
			Name:        "GET_ORDERS",
			Description: "List Upbit orders (requires private API)",
			Method:      http.MethodGet,
			Path:        "/orders",
			Params: []CatalogParam{
				{Name: "market", Type: "string", Description: "Market code, e.g., KRW-BTC"},
				{Name: "state", Type: "string", Description: "Order state", Enum: []string{"wait", "done", "cancel"}, Default: "wait"},
				pageParam,
				limitParam(100),
			},
			Private:   true,
			Shape:     upbit.Shape{Kind: upbit.ShapeArray},
			newParams: func() ToolParams { return &OrdersParams{} },
		},
		{
			Name:        "GET_ORDER",
			Description: "Get a single Upbit order (requires private API)",
			Method:      http.MethodGet,
			Path:        "/order",
			Params:      lookupParams,
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams:   func() ToolParams { return &OrderLookupParams{} },
		},
		{
			Name:        "CANCEL_ORDER",
			Description: "Cancel an Upbit order by uuid or identifier (requires private API)",
			Method:      http.MethodDelete,
			Path:        "/order",
			Params:      lookupParams,
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams:   func() ToolParams { return &OrderLookupParams{} },
		},
		{
			Name:        "LIST_WITHDRAWAL_ADDRESSES",
			Description: "List registered withdrawal-allowed addresses (requires private API)",
			Method:      http.MethodGet,
			Path:        "/withdraws/coin_addresses",
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray},
			newParams:   func() ToolParams { return &NoParams{} },
		},
		{
			Name:        "CREATE_WITHDRAWAL",
			Description: "Request a digital asset withdrawal (requires private API)",
			Method:      http.MethodPost,
			Path:        "/withdraws/coin",
			Params: []CatalogParam{
				currencyParam,
				{Name: "amount", Type: "string", Description: "Withdrawal amount", Required: true, Format: "decimal"},
				{Name: "address", Type: "string", Description: "Registered withdrawal address", Required: true},
				netTypeParam,
				{Name: "secondary_address", Type: "string", Description: "Secondary address (destination tag or memo)"},
				{Name: "transaction_type", Type: "string", Description: "default or internal transfer", Enum: []string{"default", "internal"}},
			},
			Private:   true,
			Strict:    true,
			Shape:     upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams: func() ToolParams { return &CreateWithdrawalParams{} },
		},
		{
			Name:        "GET_WITHDRAWAL",
			Description: "Get a single withdrawal by UUID (requires private API)",
			Method:      http.MethodGet,
			Path:        "/withdraw",
			Params:      []CatalogParam{uuidParam},
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams:   func() ToolParams { return &UUIDParams{} },
		},
		{
			Name:        "LIST_WITHDRAWALS",
			Description: "List withdrawals (requires private API)",
			Method:      http.MethodGet,
			Path:        "/withdraws",
			Params:      historyParams,
			Private:     true,
			Strict:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray},
			newParams:   func() ToolParams { return &HistoryParams{} },
		},
		{
			Name:        "CANCEL_WITHDRAWAL",
			Description: "Cancel a pending withdrawal by UUID (requires private API)",
			Method:      http.MethodDelete,
			Path:        "/withdraw",
			Params:      []CatalogParam{uuidParam},
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams:   func() ToolParams { return &UUIDParams{} },
		},
		{
			Name:        "GET_DEPOSIT_CHANCE",
			Description: "Get deposit availability information for a currency (private)",
			Method:      http.MethodGet,
			Path:        "/deposits/chance/coin",
			Params:      []CatalogParam{currencyParam, optionalParam(netTypeParam)},
			Private:     true,
			Strict:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject},
			newParams:   func() ToolParams { return &CurrencyParams{} },
		},
		{
			Name:        "CREATE_DEPOSIT_ADDRESS",
			Description: "Request creation of a deposit address (requires private API)",
			Method:      http.MethodPost,
			Path:        "/deposits/coin_address",
			Params:      []CatalogParam{currencyParam, netTypeParam},
			Private:     true,
			Strict:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject},
			newParams:   func() ToolParams { return &CurrencyParams{} },
		},
		{
			Name:        "GET_DEPOSIT_ADDRESS",
			Description: "Get a single deposit address for a currency and net_type (private)",
			Method:      http.MethodGet,
			Path:        "/deposits/coin_address",
			Params:      []CatalogParam{currencyParam, netTypeParam},
			Private:     true,
			Strict:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"currency"}},
			newParams:   func() ToolParams { return &CurrencyParams{} },
		},
		{
			Name:        "LIST_DEPOSIT_ADDRESSES",
			Description: "List deposit addresses for all currencies (requires private API)",
			Method:      http.MethodGet,
			Path:        "/deposits/coin_addresses",
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray},
			newParams:   func() ToolParams { return &NoParams{} },
		},
		{
			Name:        "GET_DEPOSIT",
			Description: "Get a single deposit by UUID (requires private API)",
			Method:      http.MethodGet,
			Path:        "/deposit",
			Params:      []CatalogParam{uuidParam},
			Private:     true,
			Shape:       upbit.Shape{Kind: upbit.ShapeObject, Required: []string{"uuid"}},
			newParams:   func() ToolParams { return &UUIDParams{} },
		},
		{
			Name:        "LIST_DEPOSITS",
			Description: "List deposits (requires private API)",
			Method:      http.MethodGet,
			Path:        "/deposits",
			Params:      historyParams,
			Private:     true,
			Strict:      true,
			Shape:       upbit.Shape{Kind: upbit.ShapeArray},
			newParams:   func() ToolParams { return &HistoryParams{} },
		},
	}
}

// RegisterTools registers catalog tools on s, each dispatched through p.
func RegisterTools(s *server.MCPServer, p *UpbitProxy, catalog []CatalogTool) int {
	for _, ct := range catalog {
		s.AddTool(BuildMCPTool(ct), GenericToolHandler(p, ct))
	}
	return len(catalog)
}
