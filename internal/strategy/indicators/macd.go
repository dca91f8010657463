package indicators

import "tradingengine/internal/domain"

// MACD returns the MACD line (EMA fast minus EMA slow), its signal line (EMA
// of the MACD line) and the histogram (MACD minus signal).
func MACD(closes []float64, fast, slow, signal int) (macd, signalLine, hist domain.Series) {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)

	macd = make(domain.Series, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	signalLine = EMA(macd, signal)
	hist = make(domain.Series, len(closes))
	for i := range closes {
		hist[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, hist
}
