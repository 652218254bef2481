package broker

import (
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"PortfolioSentinel/internal/model"
)

const (
	// Buy limit orders are priced 0.1% below the reference price.
	limitDiscount = 0.999

	// Funding becomes eligible one hour after the session opens.
	openOffset = time.Hour

	exchangeTimezone = "America/New_York"
)

// AlpacaBroker implements Broker against the Alpaca trading API.
type AlpacaBroker struct {
	client  *alpaca.Client
	eastern *time.Location
	log     zerolog.Logger
}

// NewAlpacaBroker creates a broker client for the given credentials.
func NewAlpacaBroker(apiKey, apiSecret, baseURL string, log zerolog.Logger) (*AlpacaBroker, error) {
	eastern, err := time.LoadLocation(exchangeTimezone)
	if err != nil {
		return nil, fmt.Errorf("load exchange timezone: %w", err)
	}
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   baseURL,
	})
	return &AlpacaBroker{
		client:  client,
		eastern: eastern,
		log:     log.With().Str("component", "broker").Logger(),
	}, nil
}

// Account fetches the live account snapshot.
func (b *AlpacaBroker) Account() (model.AccountSnapshot, error) {
	acct, err := b.client.GetAccount()
	if err != nil {
		return model.AccountSnapshot{}, fmt.Errorf("get account: %w", err)
	}
	return model.AccountSnapshot{
		Equity:      acct.Equity.InexactFloat64(),
		Cash:        acct.Cash.InexactFloat64(),
		BuyingPower: acct.BuyingPower.InexactFloat64(),
	}, nil
}

// Positions fetches the held assets in the order the API reports them.
func (b *AlpacaBroker) Positions() ([]model.Position, error) {
	positions, err := b.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	out := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		pos := model.Position{Symbol: p.Symbol}
		if p.MarketValue != nil {
			pos.MarketValue = p.MarketValue.InexactFloat64()
		}
		if p.CurrentPrice != nil {
			pos.CurrentPrice = p.CurrentPrice.InexactFloat64()
		}
		out = append(out, pos)
	}
	return out, nil
}

// NextFundingTime looks up the next trading session at or after from and
// returns its open time plus the funding offset, in UTC.
func (b *AlpacaBroker) NextFundingTime(from time.Time) (time.Time, error) {
	day := from.In(b.eastern)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, b.eastern)

	days, err := b.client.GetCalendar(alpaca.GetCalendarRequest{
		Start: start,
		End:   start.AddDate(0, 0, 7),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("get calendar: %w", err)
	}
	if len(days) == 0 {
		return time.Time{}, fmt.Errorf("no trading sessions in the week after %s", start.Format("2006-01-02"))
	}

	open, err := time.ParseInLocation("2006-01-02 15:04", days[0].Date+" "+days[0].Open, b.eastern)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse session open %q %q: %w", days[0].Date, days[0].Open, err)
	}
	return open.Add(openOffset).UTC(), nil
}

// SubmitBuy places a day-scoped limit buy order sized by the whole number of
// shares the dollars cover at the discounted limit price.
func (b *AlpacaBroker) SubmitBuy(symbol string, refPrice, dollars float64) (model.OrderRecord, error) {
	limitPrice, qty, err := limitOrderFor(refPrice, dollars)
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("size order for %s: %w", symbol, err)
	}

	qtyDec := decimal.NewFromInt(qty)
	order, err := b.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        symbol,
		Qty:           &qtyDec,
		Side:          alpaca.Buy,
		Type:          alpaca.Limit,
		TimeInForce:   alpaca.Day,
		LimitPrice:    &limitPrice,
		ClientOrderID: uuid.NewString(),
	})
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("place order for %s: %w", symbol, err)
	}

	b.log.Info().
		Str("symbol", symbol).
		Str("limit_price", limitPrice.StringFixed(2)).
		Int64("qty", qty).
		Float64("dollars", dollars).
		Str("order_id", order.ID).
		Msg("buy order submitted")

	rec := model.OrderRecord{
		OrderID:    order.ID,
		Symbol:     symbol,
		Amount:     dollars,
		LimitPrice: limitPrice.InexactFloat64(),
		Qty:        qty,
	}
	return rec, nil
}

// limitOrderFor computes the cents-rounded limit price and the whole-share
// quantity for a buy of the given dollar amount.
func limitOrderFor(refPrice, dollars float64) (decimal.Decimal, int64, error) {
	if dollars <= 0 {
		return decimal.Decimal{}, 0, fmt.Errorf("non-positive order amount %.2f", dollars)
	}
	limitPrice := decimal.NewFromFloat(refPrice * limitDiscount).Round(2)
	if !limitPrice.IsPositive() {
		return decimal.Decimal{}, 0, fmt.Errorf("non-positive limit price for reference %.4f", refPrice)
	}
	qty := decimal.NewFromFloat(dollars).Div(limitPrice).IntPart()
	if qty < 1 {
		return decimal.Decimal{}, 0, fmt.Errorf("amount %.2f buys no whole share at limit %s", dollars, limitPrice.StringFixed(2))
	}
	return limitPrice, qty, nil
}
