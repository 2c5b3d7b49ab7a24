// Package recorder persists market-data ticks to one CSV file per
// (tradingDay, instrumentID).
package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
	"github.com/tabxx/ctpbridge/internal/observ"
)

const header = "TradingDay,InstrumentID,UpdateTime,UpdateMillisec,LastPrice,Volume,BidPrice1,BidVolume1,AskPrice1,AskVolume1,AveragePrice,Turnover,OpenInterest,UpperLimitPrice,LowerLimitPrice\n"

// Recorder appends ticks to per-instrument CSVs under
// <dir>/<tradingDay>/<instrumentID>.csv, creating the header on first
// write. Open handles are cached until Close or until a tick for a
// newer trading day retires them.
type Recorder struct {
	dir string
	log *zap.Logger

	mu    sync.Mutex
	files map[string]*os.File
}

func New(dir string, log *zap.Logger) *Recorder {
	return &Recorder{
		dir:   dir,
		log:   log.Named("recorder"),
		files: make(map[string]*os.File),
	}
}

// OnTick implements workflow.TickSink. A failing write is logged and
// the tick dropped; the feed keeps going.
func (r *Recorder) OnTick(tick codec.MarketData) {
	if tick.TradingDay == "" || tick.InstrumentID == "" {
		return
	}
	row := fmt.Sprintf("%s,%s,%s,%d,%.3f,%d,%.3f,%d,%.3f,%d,%.3f,%s,%s,%s,%s\n",
		tick.TradingDay, tick.InstrumentID, tick.UpdateTime, tick.UpdateMillisec,
		tick.LastPrice, tick.Volume,
		tick.BidPrice1, tick.BidVolume1, tick.AskPrice1, tick.AskVolume1,
		tick.AveragePrice, plain(tick.Turnover), plain(tick.OpenInterest),
		plain(tick.UpperLimitPrice), plain(tick.LowerLimitPrice))

	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.file(tick.TradingDay, tick.InstrumentID)
	if err != nil {
		r.log.Error("open tick file", zap.Error(err))
		return
	}
	if _, err := f.WriteString(row); err != nil {
		r.log.Error("write tick", zap.String("instrument", tick.InstrumentID), zap.Error(err))
		return
	}
	observ.IncCounter("ticks_recorded_total", map[string]string{"trading_day": tick.TradingDay})
}

// plain formats a float as a plain decimal; turnover routinely exceeds
// 1e6 and must never render in scientific notation.
func plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *Recorder) file(day, instrument string) (*os.File, error) {
	key := day + "/" + instrument
	if f, ok := r.files[key]; ok {
		return f, nil
	}
	// First tick of a new day releases every prior-day handle.
	for k, old := range r.files {
		if !strings.HasPrefix(k, day+"/") {
			old.Close()
			delete(r.files, k)
		}
	}
	dir := filepath.Join(r.dir, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, instrument+".csv")
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	if fresh {
		if _, err := f.WriteString(header); err != nil {
			f.Close()
			return nil, err
		}
	}
	r.files[key] = f
	return f, nil
}

// Close flushes and drops all cached handles. The recorder stays
// usable; the next tick reopens its file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for key, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.files, key)
	}
	return firstErr
}
