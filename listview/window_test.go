package listview

import (
	"errors"
	"testing"

	. "github.com/fulldump/biff"
)

func TestViewport_Range(t *testing.T) {

	v := Viewport{ItemHeight: 10, Height: 50, Overscan: 2}

	start, end := v.Range(0, 100)
	AssertEqual([]int{start, end}, []int{0, 7})

	start, end = v.Range(200, 100)
	AssertEqual([]int{start, end}, []int{18, 27})

	// clamped to the last full screen
	start, end = v.Range(5000, 100)
	AssertEqual([]int{start, end}, []int{93, 100})

	start, end = v.Range(-10, 3)
	AssertEqual([]int{start, end}, []int{0, 3})

	start, end = v.Range(0, 0)
	AssertEqual([]int{start, end}, []int{0, 0})

	AssertEqual(v.MaxOffset(100), 950)
	AssertEqual(v.MaxOffset(2), 0)
}

func TestViewport_Disabled(t *testing.T) {

	v := Viewport{}

	AssertFalse(v.Enabled())
	start, end := v.Range(300, 42)
	AssertEqual([]int{start, end}, []int{0, 42})
	AssertEqual(v.MaxOffset(42), 0)
}

func TestTrigger(t *testing.T) {

	Alternative("Trigger", func(a *A) {

		trigger := NewTrigger(5)

		a.Alternative("Fires once per crossing", func(a *A) {
			AssertFalse(trigger.Check(10, 40, true))
			AssertTrue(trigger.Check(36, 40, true))
			AssertFalse(trigger.Check(38, 40, true))
			AssertFalse(trigger.Check(40, 40, true))
		})

		a.Alternative("Re-arms when data arrives", func(a *A) {
			AssertTrue(trigger.Check(40, 40, true))
			AssertFalse(trigger.Check(40, 40, true))
			AssertTrue(trigger.Check(60, 60, true))
		})

		a.Alternative("Re-arms when leaving the zone", func(a *A) {
			AssertTrue(trigger.Check(40, 40, true))
			AssertFalse(trigger.Check(20, 40, true))
			AssertTrue(trigger.Check(39, 40, true))
		})

		a.Alternative("Never fires without a next page", func(a *A) {
			AssertFalse(trigger.Check(40, 40, false))
			AssertFalse(trigger.Check(40, 40, false))
		})

		a.Alternative("Empty buffer", func(a *A) {
			AssertFalse(trigger.Check(0, 0, true))
		})
	})
}

func TestPagination(t *testing.T) {

	p := NewPagination(2, 10, 25)
	AssertEqual(*p, Pagination{
		Page:            2,
		PageSize:        10,
		TotalItems:      25,
		TotalPages:      3,
		HasNextPage:     true,
		HasPreviousPage: true,
	})

	from, to := p.Range()
	AssertEqual([]int{from, to}, []int{11, 20})

	last := NewPagination(3, 10, 25)
	AssertFalse(last.HasNextPage)
	from, to = last.Range()
	AssertEqual([]int{from, to}, []int{21, 25})

	empty := NewPagination(0, 0, 0)
	AssertEqual(empty.Page, 1)
	AssertEqual(empty.TotalPages, 0)
	AssertFalse(empty.HasNextPage)
	from, to = empty.Range()
	AssertEqual(summary(from, to, empty.TotalItems), "")

	AssertEqual(summary(11, 20, 25), "Showing 11-20 of 25")
}

func TestBuffer(t *testing.T) {

	Alternative("Paged", func(a *A) {
		b := NewBuffer(ModePaged)
		AssertTrue(b.Push(people(10, 0), NewPagination(1, 10, 30)))
		AssertTrue(b.Push(people(10, 20), NewPagination(3, 10, 30)))
		AssertEqual(b.Len(), 10)
		AssertEqual(b.Items()[0].ID, "p20")
		AssertEqual(b.Page(), 3)
	})

	Alternative("Infinite", func(a *A) {

		b := NewBuffer(ModeInfinite)
		b.Push(people(10, 0), NewPagination(1, 10, 30))

		a.Alternative("Appends the next page", func(a *A) {
			AssertTrue(b.Push(people(10, 10), NewPagination(2, 10, 30)))
			AssertTrue(b.Push(people(10, 20), NewPagination(3, 10, 30)))
			AssertEqual(b.Len(), 30)
			AssertEqual(b.Items()[29].ID, "p29")
		})

		a.Alternative("Discards duplicated and skipped pages", func(a *A) {
			AssertTrue(b.Push(people(10, 10), NewPagination(2, 10, 30)))
			AssertFalse(b.Push(people(10, 10), NewPagination(2, 10, 30)))
			AssertFalse(b.Push(people(10, 90), NewPagination(9, 10, 100)))
			AssertEqual(b.Len(), 20)
			AssertEqual(b.Page(), 2)
		})

		a.Alternative("Page one starts a new session", func(a *A) {
			b.Push(people(10, 10), NewPagination(2, 10, 30))
			AssertTrue(b.Push(people(3, 100), NewPagination(1, 10, 3)))
			AssertEqual(ids(b.Items()), []string{"p100", "p101", "p102"})
		})

		a.Alternative("Reset", func(a *A) {
			b.Reset()
			AssertEqual(b.Len(), 0)
			AssertFalse(b.Push(people(10, 10), NewPagination(2, 10, 30)))
		})
	})

	Alternative("Local collection replaces", func(a *A) {
		b := NewBuffer(ModeInfinite)
		b.Push(people(3, 0), nil)
		b.Push(people(2, 0), nil)
		AssertEqual(b.Len(), 2)
		AssertEqual(b.Page(), 0)
	})
}

func TestColumns_Validate(t *testing.T) {

	AssertNil(testColumns.Validate())

	err := Columns{{Key: "a"}, {Key: "b"}, {Key: "a"}}.Validate()
	AssertTrue(errors.Is(err, ErrDuplicateColumn))

	err = Columns{{Key: ""}}.Validate()
	AssertTrue(errors.Is(err, ErrEmptyColumnKey))

	err = Columns{{Key: "a", Align: "justify"}}.Validate()
	AssertTrue(errors.Is(err, ErrInvalidAlign))
}
