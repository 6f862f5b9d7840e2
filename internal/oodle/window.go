package oodle

import "errors"

// errImpossibleRange signals the decoder escape landing on a
// cumulative-range slot that cannot occur for well-formed input; it is
// reported as a decode failure rather than a panic.
var errImpossibleRange = errors.New("oodle: decoder escape hit an impossible range")

// ErrImpossibleRange is the exported form of errImpossibleRange, for
// callers that want to distinguish this failure with errors.Is.
var ErrImpossibleRange = errImpossibleRange

// WeighWindow is an adaptive frequency model over a growing symbol
// alphabet, the decoding primitive a Dictionary's five window groups
// are all built from.
type WeighWindow struct {
	countCap uint16

	ranges  []uint16
	values  []uint16
	weights []uint16

	weightTotal uint16

	threshIncrease      uint16
	threshIncreaseCap   uint16
	threshRangeRebuild  uint16
	threshWeightRebuild uint16
}

// Init prepares the window for an alphabet whose values never exceed
// maxValue, reserving room to grow up to countCap+1 distinct symbols.
func (w *WeighWindow) Init(maxValue uint32, countCap uint16) {
	w.weightTotal = 4
	w.countCap = countCap + 1

	w.ranges = []uint16{0, 0x4000}
	w.weights = []uint16{4}
	w.values = []uint16{0}

	w.threshIncrease = 4
	w.threshRangeRebuild = 8
	w.threshWeightRebuild = uint16(max(256, min(32*maxValue, 15160)))

	if maxValue > 64 {
		w.threshIncreaseCap = uint16(min(2*maxValue, uint32(w.threshWeightRebuild)/2-32))
	} else {
		w.threshIncreaseCap = 128
	}
}

func maxElement(arr []uint16, offset int) int {
	idx := offset
	var best uint16
	for i := offset; i < len(arr); i++ {
		if arr[i] > best {
			best = arr[i]
			idx = i
		}
	}
	return idx
}

// rebuildWeights halves every weight, drops symbols whose weight fell
// to zero (folding the tail element into their slot), and ensures slot
// 0 keeps a floor weight once the alphabet has room to grow.
func (w *WeighWindow) rebuildWeights() {
	var total uint16
	for i := range w.weights {
		w.weights[i] /= 2
		total += w.weights[i]
	}
	w.weightTotal = total

	for i := 1; i < len(w.weights); i++ {
		for i < len(w.weights) && w.weights[i] == 0 {
			w.weights[i] = w.weights[len(w.weights)-1]
			w.values[i] = w.values[len(w.values)-1]
			w.weights = w.weights[:len(w.weights)-1]
			w.values = w.values[:len(w.values)-1]
		}
	}

	it := maxElement(w.weights, 1)
	if it < len(w.weights) {
		last := len(w.weights) - 1
		w.weights[it], w.weights[last] = w.weights[last], w.weights[it]
		w.values[it], w.values[len(w.values)-1] = w.values[len(w.values)-1], w.values[it]
	}

	if len(w.weights) < int(w.countCap) && w.weights[0] == 0 {
		w.weights[0] = 1
		w.weightTotal++
	}
}

// rebuildRanges recomputes the cumulative cut-points from the current
// weights and schedules the next rebuild.
func (w *WeighWindow) rebuildRanges() {
	if len(w.ranges) != len(w.weights)+1 {
		w.ranges = make([]uint16, len(w.weights)+1)
	}

	rangeWeight := uint32(8*0x4000) / uint32(w.weightTotal)
	var rangeStart uint32
	for i := range w.weights {
		w.ranges[i] = uint16(rangeStart)
		rangeStart += uint32(w.weights[i]) * rangeWeight / 8
	}
	w.ranges[len(w.ranges)-1] = 0x4000

	if w.threshIncrease > w.threshIncreaseCap/2 {
		w.threshRangeRebuild = w.weightTotal + w.threshIncreaseCap
	} else {
		w.threshIncrease *= 2
		w.threshRangeRebuild = w.weightTotal + w.threshIncrease
	}
}

// TryDecode draws the next symbol. When idx is -1 the caller's value
// is final; otherwise the caller must resolve the true value out of
// band (the stream holds it directly) and write it back with
// SetValue(idx, value) before using it.
func (w *WeighWindow) TryDecode(d *Decoder) (idx int, value uint16, err error) {
	if w.weightTotal >= w.threshRangeRebuild {
		if w.threshRangeRebuild >= w.threshWeightRebuild {
			w.rebuildWeights()
		}
		w.rebuildRanges()
	}

	v := d.Decode(0x4000)
	rangeit := len(w.ranges) - 1
	for i := 0; i < len(w.ranges); i++ {
		if w.ranges[i] > v {
			rangeit = i
			break
		}
	}
	if rangeit == 0 {
		return 0, 0, errImpossibleRange
	}
	rangeit--

	d.Commit(0x4000, w.ranges[rangeit], w.ranges[rangeit+1]-w.ranges[rangeit])

	index := rangeit
	w.weights[index]++
	w.weightTotal++

	if index > 0 {
		return -1, w.values[index], nil
	}

	if len(w.weights) >= len(w.ranges) && d.DecodeCommit(2) == 1 {
		picked := len(w.ranges) + int(d.DecodeCommit(uint16(len(w.weights)-len(w.ranges)+1))) - 1
		w.weights[picked] += 2
		w.weightTotal += 2
		return -1, w.values[picked], nil
	}

	w.values = append(w.values, 0)
	w.weights = append(w.weights, 2)
	w.weightTotal += 2

	if len(w.weights) == int(w.countCap) {
		w.weightTotal -= w.weights[0]
		w.weights[0] = 0
	}

	return len(w.values) - 1, 0, nil
}

// SetValue records the out-of-band value the caller resolved for the
// slot TryDecode just promoted.
func (w *WeighWindow) SetValue(idx int, value uint16) {
	w.values[idx] = value
}
