package oracle

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"simmarket/src/simtime"
)

// dataPoint is one (timestamp, value) row of a fundamental series, value
// held in cents.
type dataPoint struct {
	timestamp int64
	value     int64
}

// FileOracle is the reference Oracle: a fundamental-value series per
// symbol, read from a two-column `timestamp,value` CSV and linearly
// interpolated between the nearest bracketing rows. Values outside the
// series clamp to the nearest endpoint, grounded on
// original_source/util/oracles/ExternalFileOracle.h.
type FileOracle struct {
	series map[string][]dataPoint
}

// NewFileOracle loads one CSV file per symbol. Each file's rows are sorted
// by timestamp after loading, so the input file's row order doesn't matter.
func NewFileOracle(paths map[string]string) (*FileOracle, error) {
	o := &FileOracle{series: make(map[string][]dataPoint, len(paths))}
	for symbol, path := range paths {
		points, err := loadFundamentals(path)
		if err != nil {
			return nil, fmt.Errorf("oracle: loading %s: %w", symbol, err)
		}
		o.series[symbol] = points
	}
	return o, nil
}

func loadFundamentals(path string) ([]dataPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var points []dataPoint
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			continue
		}
		val, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		points = append(points, dataPoint{timestamp: ts, value: val.IntPart()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.Slice(points, func(i, j int) bool { return points[i].timestamp < points[j].timestamp })
	return points, nil
}

// FundamentalValue linearly interpolates the fundamental value of symbol at
// the given time, clamping to the series endpoints outside its range.
func (o *FileOracle) FundamentalValue(symbol string, at simtime.Timestamp) (int64, error) {
	points, ok := o.series[symbol]
	if !ok || len(points) == 0 {
		return 0, fmt.Errorf("oracle: no fundamental series for symbol %q", symbol)
	}

	t := at.Nanos()
	if t <= points[0].timestamp {
		return points[0].value, nil
	}
	last := points[len(points)-1]
	if t >= last.timestamp {
		return last.value, nil
	}

	idx := sort.Search(len(points), func(i int) bool { return points[i].timestamp >= t })
	if points[idx].timestamp == t {
		return points[idx].value, nil
	}
	lo, hi := points[idx-1], points[idx]
	span := hi.timestamp - lo.timestamp
	frac := decimal.NewFromInt(t - lo.timestamp).DivRound(decimal.NewFromInt(span), 10)
	delta := decimal.NewFromInt(hi.value - lo.value)
	interpolated := decimal.NewFromInt(lo.value).Add(delta.Mul(frac))
	return interpolated.Round(0).IntPart(), nil
}
