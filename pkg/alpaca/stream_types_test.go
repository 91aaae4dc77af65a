package alpaca_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fivetwenty-io/alpaca-client/pkg/alpaca"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeed(t *testing.T) {
	t.Parallel()

	feed, err := alpaca.ParseFeed("sip")
	require.NoError(t, err)
	assert.Equal(t, alpaca.FeedSIP, feed)

	_, err = alpaca.ParseFeed("otc")
	require.ErrorIs(t, err, alpaca.ErrUnknownFeed)
}

func TestHandshakeMessages(t *testing.T) {
	t.Parallel()

	market, err := json.Marshal(alpaca.NewMarketAuthMessage("k", "s"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"auth","key":"k","secret":"s"}`, string(market))

	account, err := json.Marshal(alpaca.NewAccountAuthMessage("k", "s"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"authenticate","data":{"key_id":"k","secret_key":"s"}}`, string(account))

	listen, err := json.Marshal(alpaca.NewListenMessage())
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"listen","data":{"streams":[]}}`, string(listen))
}

func TestSubscription_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, alpaca.Subscription{}.IsEmpty())
	assert.False(t, alpaca.Subscription{Bars: []string{"SPY"}}.IsEmpty())
}

func TestDecodeStreamMessage(t *testing.T) {
	t.Parallel()

	t.Run("trade", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeStreamMessage([]byte(
			`{"T":"t","S":"AAPL","p":150.25,"s":100,"t":"2024-01-02T15:04:05.123Z","x":"V","i":42,"c":["@"],"z":"C"}`,
		))
		require.NoError(t, err)

		trade, ok := msg.(*alpaca.StreamTrade)
		require.True(t, ok)
		assert.Equal(t, "AAPL", trade.Symbol)
		assert.True(t, decimal.RequireFromString("150.25").Equal(trade.Price))
		assert.Equal(t, int64(100), trade.Size)
		assert.Equal(t, int64(42), trade.ID)
		assert.Equal(t, time.Date(2024, 1, 2, 15, 4, 5, 123000000, time.UTC), trade.Timestamp.UTC())
		assert.Equal(t, alpaca.MessageTypeTrade, trade.MessageType())
		assert.Equal(t, "t", trade.Type)
		assert.Equal(t, "V", trade.Exchange)
		assert.Equal(t, []string{"@"}, trade.Conditions)
		assert.Equal(t, "C", trade.Tape)
	})

	t.Run("quote", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeStreamMessage([]byte(
			`{"T":"q","S":"SPY","ap":470.1,"as":2,"ax":"K","bp":470.0,"bs":3,"bx":"Q","c":["R"],"t":"2024-01-02T15:04:05Z","z":"B"}`,
		))
		require.NoError(t, err)

		quote, ok := msg.(*alpaca.StreamQuote)
		require.True(t, ok)
		assert.Equal(t, alpaca.MessageTypeQuote, quote.MessageType())
		assert.Equal(t, int64(3), quote.BidSize)
		assert.Equal(t, "K", quote.AskExchange)
		assert.Equal(t, time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC), quote.Timestamp.UTC())
	})

	t.Run("bar", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeStreamMessage([]byte(
			`{"T":"b","S":"SPY","o":1,"h":2,"l":0.5,"c":1.5,"v":1000,"t":"2024-01-02T15:04:00Z","n":12,"vw":1.25}`,
		))
		require.NoError(t, err)

		bar, ok := msg.(*alpaca.StreamBar)
		require.True(t, ok)
		assert.Equal(t, int64(1000), bar.Volume)
		assert.Equal(t, int64(12), bar.TradeCount)
		assert.True(t, decimal.RequireFromString("1.25").Equal(bar.VWAP))
		assert.Equal(t, time.Date(2024, 1, 2, 15, 4, 0, 0, time.UTC), bar.Timestamp.UTC())
	})

	t.Run("control messages", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeStreamMessage([]byte(`{"T":"success","msg":"authenticated"}`))
		require.NoError(t, err)
		assert.Equal(t, &alpaca.SuccessMessage{Msg: "authenticated"}, msg)

		msg, err = alpaca.DecodeStreamMessage([]byte(`{"T":"error","code":402,"msg":"auth failed"}`))
		require.NoError(t, err)

		errMsg, ok := msg.(*alpaca.ErrorMessage)
		require.True(t, ok)
		assert.Equal(t, "stream error 402: auth failed", errMsg.Error())

		msg, err = alpaca.DecodeStreamMessage([]byte(`{"T":"subscription","trades":["AAPL"],"quotes":[],"bars":["*"]}`))
		require.NoError(t, err)
		assert.Equal(t, &alpaca.SubscriptionMessage{Trades: []string{"AAPL"}, Quotes: []string{}, Bars: []string{"*"}}, msg)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		frame := `{"T":"c","S":"AAPL","x":"V","oi":1,"ci":2}`

		msg, err := alpaca.DecodeStreamMessage([]byte(frame))
		require.NoError(t, err)

		unknown, ok := msg.(*alpaca.UnknownMessage)
		require.True(t, ok)
		assert.Equal(t, "c", unknown.MessageType())

		data, err := json.Marshal(unknown)
		require.NoError(t, err)
		assert.JSONEq(t, frame, string(data))
	})

	t.Run("missing type", func(t *testing.T) {
		t.Parallel()

		_, err := alpaca.DecodeStreamMessage([]byte(`{"t":"2024-01-02T15:04:05Z"}`))
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
		require.ErrorIs(t, err, alpaca.ErrUnknownMessageType)

		_, err = alpaca.DecodeStreamMessage([]byte(`{"T":5}`))
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		_, err := alpaca.DecodeStreamMessage([]byte(`{"T":"t","p":"abc"}`))
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
	})
}

func TestDecodeStreamMessages(t *testing.T) {
	t.Parallel()

	msgs, err := alpaca.DecodeStreamMessages([]byte(` [{"T":"success","msg":"connected"},{"T":"t","S":"AAPL","p":1}] `))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, alpaca.MessageTypeSuccess, msgs[0].MessageType())
	assert.Equal(t, alpaca.MessageTypeTrade, msgs[1].MessageType())

	msgs, err = alpaca.DecodeStreamMessages([]byte(`{"T":"b","S":"SPY"}`))
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msgs, err = alpaca.DecodeStreamMessages([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = alpaca.DecodeStreamMessages([]byte(`[{"T":"success"},{"T":"?"}]`))
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "?", msgs[1].MessageType())

	_, err = alpaca.DecodeStreamMessages([]byte(`{"T":"t"`))
	require.ErrorIs(t, err, alpaca.ErrDeserialize)
}

func TestDecodeStreamMessages_MixedBatch(t *testing.T) {
	t.Parallel()

	frame := `[` +
		`{"T":"t","S":"AAPL","p":190.5,"s":10,"t":"2024-01-02T15:04:05Z","x":"V","i":1,"z":"C"},` +
		`{"T":"t","S":"AAPL","p":"not-a-price","t":"2024-01-02T15:04:06Z"},` +
		`{"T":"t","S":"MSFT","p":402.1,"s":3,"t":"2024-01-02T15:04:07Z","x":"V","i":2,"z":"C"}` +
		`]`

	msgs, err := alpaca.DecodeStreamMessages([]byte(frame))
	require.ErrorIs(t, err, alpaca.ErrDeserialize)
	assert.Contains(t, err.Error(), "message 1")
	require.Len(t, msgs, 2)

	first, ok := msgs[0].(*alpaca.StreamTrade)
	require.True(t, ok)
	assert.Equal(t, "AAPL", first.Symbol)

	second, ok := msgs[1].(*alpaca.StreamTrade)
	require.True(t, ok)
	assert.Equal(t, "MSFT", second.Symbol)
	assert.Equal(t, int64(2), second.ID)
}

func TestDecodeAccountStreamMessage(t *testing.T) {
	t.Parallel()

	t.Run("authorization", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeAccountStreamMessage([]byte(
			`{"stream":"authorization","data":{"status":"authorized","action":"authenticate"}}`,
		))
		require.NoError(t, err)

		auth, ok := msg.(*alpaca.AuthorizationMessage)
		require.True(t, ok)
		assert.True(t, auth.Authorized())

		msg, err = alpaca.DecodeAccountStreamMessage([]byte(
			`{"stream":"authorization","data":{"status":"unauthorized","action":"authenticate"}}`,
		))
		require.NoError(t, err)
		assert.False(t, msg.(*alpaca.AuthorizationMessage).Authorized())
	})

	t.Run("listening", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeAccountStreamMessage([]byte(`{"stream":"listening","data":{"streams":["trade_updates"]}}`))
		require.NoError(t, err)
		assert.Equal(t, &alpaca.ListeningMessage{Streams: []string{"trade_updates"}}, msg)
	})

	t.Run("trade update", func(t *testing.T) {
		t.Parallel()

		msg, err := alpaca.DecodeAccountStreamMessage([]byte(`{
			"stream":"trade_updates",
			"data":{
				"event":"fill",
				"price":"179.08",
				"qty":"1",
				"position_qty":"5",
				"timestamp":"2024-03-01T14:30:00Z",
				"order":{"id":"o-1","symbol":"AAPL","side":"buy","status":"filled","qty":"1","filled_qty":"1"}
			}
		}`))
		require.NoError(t, err)

		update, ok := msg.(*alpaca.TradeUpdate)
		require.True(t, ok)
		assert.Equal(t, alpaca.TradeUpdatesChannel, update.StreamName())
		assert.Equal(t, "fill", update.Event)
		assert.Equal(t, "o-1", update.Order.ID)
		assert.True(t, update.Price.Valid)
		assert.Equal(t, "179.08", update.Price.Decimal.String())
		require.NotNil(t, update.Timestamp)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()

		_, err := alpaca.DecodeAccountStreamMessage([]byte(`{"stream":"other","data":{}}`))
		require.ErrorIs(t, err, alpaca.ErrUnknownMessageType)

		_, err = alpaca.DecodeAccountStreamMessage([]byte(`{"stream":"listening"}`))
		require.ErrorIs(t, err, alpaca.ErrDeserialize)

		_, err = alpaca.DecodeAccountStreamMessage([]byte(`not json`))
		require.ErrorIs(t, err, alpaca.ErrDeserialize)
	})
}
