// Package workunit enumerates the (location, day) units a harvest fetches.
//
// A Plan is built once from the configured locations and years. Its units are
// ordered year first (in configured order), then location, then month, then
// day, and an Enumerator resumed from a checkpoint.Cursor yields exactly the
// suffix of that order:
//
//	plan, _ := workunit.NewPlan([]string{"02109", "02119"}, []int{2022, 2023})
//	it, err := plan.Enumerate(checkpoint.Cursor{Year: 2022, Month: 6, Day: 15, LocationIndex: 1})
//	for u, ok := it.Next(); ok; u, ok = it.Next() {
//		// ...
//		next := plan.Successor(u)
//	}
//
// The cursor with LocationIndex equal to the number of locations in the last
// year is the exhausted marker; Successor returns it after the final unit.
package workunit
