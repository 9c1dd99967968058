package backtest

import "tradelab/internal/domain"

// ResampleWeekly downsamples a daily series to calendar-week bars: open of
// the first bar, max high, min low, close of the last bar, summed volume.
// Each weekly bar carries the timestamp of its final daily bar, so a filter
// looking up "latest weekly bar at or before day d" only sees completed
// weeks.
func ResampleWeekly(daily domain.Series) domain.Series {
	if len(daily) == 0 {
		return nil
	}

	var weekly domain.Series
	var cur domain.Bar
	curYear, curWeek := daily[0].Timestamp.ISOWeek()
	started := false

	for _, b := range daily {
		year, week := b.Timestamp.ISOWeek()
		if !started || year != curYear || week != curWeek {
			if started {
				weekly = append(weekly, cur)
			}
			cur = b
			curYear, curWeek = year, week
			started = true
			continue
		}

		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.AdjClose = b.AdjClose
		cur.Volume += b.Volume
		cur.Timestamp = b.Timestamp
	}
	weekly = append(weekly, cur)

	return weekly
}
