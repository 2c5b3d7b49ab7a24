package recorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
)

func sampleTick() codec.MarketData {
	return codec.MarketData{
		TradingDay:      "20250901",
		InstrumentID:    "jm2601",
		UpdateTime:      "09:30:01",
		UpdateMillisec:  500,
		LastPrice:       812.5,
		Volume:          1200,
		BidPrice1:       812.0,
		BidVolume1:      15,
		AskPrice1:       813.0,
		AskVolume1:      9,
		AveragePrice:    811.75,
		Turnover:        974100,
		OpenInterest:    53000,
		UpperLimitPrice: 893,
		LowerLimitPrice: 730,
	}
}

func TestTickWritesHeaderAndRow(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	defer r.Close()

	r.OnTick(sampleTick())

	b, err := os.ReadFile(filepath.Join(dir, "20250901", "jm2601.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.TrimRight(header, "\n"), lines[0])
	assert.Equal(t, "20250901,jm2601,09:30:01,500,812.500,1200,812.000,15,813.000,9,811.750,974100,53000,893,730", lines[1])
}

func TestLargeTurnoverStaysPlainDecimal(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	defer r.Close()

	tick := sampleTick()
	tick.Turnover = 9741000.5
	tick.OpenInterest = 1234567
	r.OnTick(tick)

	b, err := os.ReadFile(filepath.Join(dir, "20250901", "jm2601.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(b), ",9741000.5,1234567,")
	assert.NotContains(t, string(b), "e+")
}

func TestDayRolloverReleasesOldHandles(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	defer r.Close()

	for _, day := range []string{"20250901", "20250902", "20250903"} {
		tick := sampleTick()
		tick.TradingDay = day
		r.OnTick(tick)
	}

	r.mu.Lock()
	keys := make([]string, 0, len(r.files))
	for k := range r.files {
		keys = append(keys, k)
	}
	r.mu.Unlock()
	assert.Equal(t, []string{"20250903/jm2601"}, keys)

	// Only the handles are retired; the files stay for the archiver.
	assert.FileExists(t, filepath.Join(dir, "20250901", "jm2601.csv"))
	assert.FileExists(t, filepath.Join(dir, "20250902", "jm2601.csv"))
}

func TestHeaderWrittenOnce(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	defer r.Close()

	r.OnTick(sampleTick())
	r.OnTick(sampleTick())

	b, err := os.ReadFile(filepath.Join(dir, "20250901", "jm2601.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "TradingDay,"))
	assert.Len(t, strings.Split(strings.TrimRight(string(b), "\n"), "\n"), 3)
}

func TestReopenAppendsWithoutDuplicateHeader(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	r.OnTick(sampleTick())
	require.NoError(t, r.Close())

	r.OnTick(sampleTick())
	require.NoError(t, r.Close())

	b, err := os.ReadFile(filepath.Join(dir, "20250901", "jm2601.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "TradingDay,"))
	assert.Len(t, strings.Split(strings.TrimRight(string(b), "\n"), "\n"), 3)
}

func TestTickWithoutKeyIsDropped(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	defer r.Close()

	r.OnTick(codec.MarketData{InstrumentID: "jm2601"}) // no trading day
	r.OnTick(codec.MarketData{TradingDay: "20250901"}) // no instrument

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSeparateFilesPerInstrument(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, zap.NewNop())
	defer r.Close()

	a := sampleTick()
	b := sampleTick()
	b.InstrumentID = "IF2512"
	r.OnTick(a)
	r.OnTick(b)

	assert.FileExists(t, filepath.Join(dir, "20250901", "jm2601.csv"))
	assert.FileExists(t, filepath.Join(dir, "20250901", "IF2512.csv"))
}
