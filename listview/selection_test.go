package listview

import (
	"testing"

	. "github.com/fulldump/biff"
)

func TestSelection(t *testing.T) {

	abc := entities(`{"id":"A"}`, `{"id":"B"}`, `{"id":"C"}`)

	Alternative("Single select", func(a *A) {

		emitted := [][]string{}
		s := NewSelection(false, func(keys []string) {
			emitted = append(emitted, keys)
		})

		a.Alternative("Toggle keeps at most one", func(a *A) {
			for _, e := range []Entity{abc[0], abc[1], abc[1], abc[2], abc[0]} {
				s.Toggle(e)
				AssertTrue(s.Len() <= 1)
			}
			AssertEqual(s.Keys(), []string{"A"})
			AssertEqual(len(emitted), 5)
		})

		a.Alternative("Toggle twice deselects", func(a *A) {
			s.Toggle(abc[1])
			s.Toggle(abc[1])
			AssertEqual(s.Len(), 0)
			AssertEqual(emitted, [][]string{{"B"}, {}})
		})

		a.Alternative("SelectAll is ignored", func(a *A) {
			AssertFalse(s.SelectAll(abc))
			AssertEqual(s.Len(), 0)
			AssertEqual(len(emitted), 0)
		})
	})

	Alternative("Multi select", func(a *A) {

		emitted := [][]string{}
		s := NewSelection(true, func(keys []string) {
			emitted = append(emitted, keys)
		})

		a.Alternative("SelectAll toggles the visible set", func(a *A) {
			s.SelectAll(abc)
			AssertEqual(s.Keys(), []string{"A", "B", "C"})
			AssertTrue(s.IsAllSelected(abc))

			s.SelectAll(abc)
			AssertEqual(s.Keys(), []string{})
			AssertEqual(len(emitted), 2)
		})

		a.Alternative("SelectAll completes a partial selection", func(a *A) {
			s.Toggle(abc[1])
			AssertTrue(s.IsSomeSelected(abc))
			AssertFalse(s.IsAllSelected(abc))

			s.SelectAll(abc)
			AssertEqual(s.Keys(), []string{"B", "A", "C"})
			AssertFalse(s.IsSomeSelected(abc))
		})

		a.Alternative("SelectAll does not touch hidden entities", func(a *A) {
			s.Toggle(abc[2])
			s.SelectAll(abc[:2])
			s.SelectAll(abc[:2])
			AssertEqual(s.Keys(), []string{"C"})
		})

		a.Alternative("Empty visible set is a no-op", func(a *A) {
			AssertFalse(s.SelectAll(nil))
			AssertFalse(s.IsAllSelected(nil))
			AssertFalse(s.IsSomeSelected(nil))
			AssertEqual(len(emitted), 0)
		})

		a.Alternative("Clear", func(a *A) {
			AssertFalse(s.Clear())
			s.Toggle(abc[0])
			s.Toggle(abc[2])
			AssertTrue(s.Clear())
			AssertEqual(s.Len(), 0)
			AssertEqual(emitted[len(emitted)-1], []string{})
		})

		a.Alternative("Entities without identity are not selectable", func(a *A) {
			anonymous := entities(`{"name":"nobody"}`)
			AssertFalse(s.Toggle(anonymous[0]))
			AssertFalse(s.SelectAll(anonymous))
			AssertEqual(len(emitted), 0)
		})
	})
}
