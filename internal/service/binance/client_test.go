package binance

import (
	"testing"
	"time"
)

func TestParseTick(t *testing.T) {
	// Full production frame: numeric "E" and "t" must not collide with the
	// string "e" field during decoding.
	raw := []byte(`{"e":"trade","E":1717243200123,"s":"SUIUSDT","t":42,"p":"2.9100","q":"150.5","b":7,"a":9,"T":1717243200100,"m":true,"M":true}`)
	tick, ok := parseTick(raw)
	if !ok {
		t.Fatalf("trade frame must parse")
	}
	if tick.Symbol != "SUIUSDT" || tick.Price != 2.91 || tick.Volume != 150.5 {
		t.Fatalf("unexpected tick %+v", tick)
	}
	want := time.UnixMilli(1717243200100).UTC()
	if !tick.Timestamp.Equal(want) {
		t.Fatalf("timestamp %v, want %v", tick.Timestamp, want)
	}
}

func TestParseTickIgnoresControlFrames(t *testing.T) {
	for _, raw := range []string{
		`{"result":null,"id":1}`,
		`{"e":"kline","s":"SUIUSDT"}`,
		`{"e":"trade","s":"SUIUSDT","p":"not-a-number","q":"1","T":1}`,
		`{"e":"trade","s":"SUIUSDT","p":"0","q":"1","T":1}`,
		`garbage`,
	} {
		if _, ok := parseTick([]byte(raw)); ok {
			t.Fatalf("frame must be ignored: %s", raw)
		}
	}
}
