package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram range: 1 microsecond to 1 hour, 3 significant figures
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// LatencyStats contains response time statistics of the requests sent
type LatencyStats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P90   time.Duration
	P95   time.Duration
	P99   time.Duration
}

type latencyRecorder struct {
	hist *hdrhistogram.Histogram
}

func newLatencyRecorder() *latencyRecorder {
	return &latencyRecorder{hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)}
}

func (l *latencyRecorder) record(d time.Duration) {
	micros := d.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}
	_ = l.hist.RecordValue(micros)
}

func (l *latencyRecorder) stats() LatencyStats {
	if l.hist.TotalCount() == 0 {
		return LatencyStats{}
	}
	return LatencyStats{
		Count: l.hist.TotalCount(),
		Min:   micros(l.hist.Min()),
		Max:   micros(l.hist.Max()),
		Mean:  time.Duration(l.hist.Mean() * float64(time.Microsecond)),
		P50:   micros(l.hist.ValueAtQuantile(50)),
		P90:   micros(l.hist.ValueAtQuantile(90)),
		P95:   micros(l.hist.ValueAtQuantile(95)),
		P99:   micros(l.hist.ValueAtQuantile(99)),
	}
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
