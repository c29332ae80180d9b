package listview

// Viewport turns a scroll offset into the range of items worth rendering.
// It works on indexes only and knows nothing about entities.
type Viewport struct {
	ItemHeight int `json:"itemHeight" yaml:"itemHeight"`
	Height     int `json:"height" yaml:"height"`
	Overscan   int `json:"overscan" yaml:"overscan"`
}

func (v Viewport) Enabled() bool {
	return v.ItemHeight > 0 && v.Height > 0
}

func (v Viewport) MaxOffset(total int) int {
	if !v.Enabled() {
		return 0
	}
	return max(total*v.ItemHeight-v.Height, 0)
}

// Range returns the half open interval [start, end) of items visible at offset.
func (v Viewport) Range(offset, total int) (start, end int) {
	if total <= 0 {
		return 0, 0
	}
	if !v.Enabled() {
		return 0, total
	}

	offset = min(max(offset, 0), v.MaxOffset(total))
	overscan := max(v.Overscan, 0)

	first := offset / v.ItemHeight
	visible := (v.Height + v.ItemHeight - 1) / v.ItemHeight

	start = max(first-overscan, 0)
	end = min(first+visible+overscan, total)
	return
}
