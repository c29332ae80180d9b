package listview

const DefaultThreshold = 5

// Trigger decides when the window is close enough to the end of the buffer
// to ask for the next page. It fires once per crossing: it stays quiet until
// new data arrives or the window leaves the threshold zone.
type Trigger struct {
	threshold int
	armed     bool
	total     int
}

func NewTrigger(threshold int) *Trigger {
	if threshold < 0 {
		threshold = 0
	}
	return &Trigger{
		threshold: threshold,
		armed:     true,
		total:     -1,
	}
}

func (t *Trigger) Check(end, total int, hasNext bool) bool {
	if total != t.total {
		t.total = total
		t.armed = true
	}

	near := total > 0 && end >= total-t.threshold
	if !near {
		t.armed = true
		return false
	}

	if !hasNext || !t.armed {
		return false
	}

	t.armed = false
	return true
}

func (t *Trigger) Reset() {
	t.armed = true
	t.total = -1
}
