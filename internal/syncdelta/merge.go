package syncdelta

// MergeFunc computes the next shared document from the current one.
// It must be pure: counter stores re-invoke it on every conflict retry.
type MergeFunc func(current GlobalCounterState) GlobalCounterState

// Merge returns the MergeFunc contributing d. firstContribution adds this
// installation to total_users. Buckets whose label is not the current day or
// week are reset before the delta is added.
func Merge(d Delta, firstContribution bool, day, week string) MergeFunc {
	return func(cur GlobalCounterState) GlobalCounterState {
		next := cur

		if firstContribution {
			next.TotalUsers++
		}
		next.TotalGlobalCalls += d.Total

		// Labels are YYYY-MM-DD, so string order is date order. A bucket that
		// already moved past our period is left alone.
		switch {
		case next.Today.Date > day:
		case next.Today.Date != day:
			next.Today = DayBucket{Date: day}
			fallthrough
		default:
			next.Today.Calls += d.Today
			if d.Today > 0 {
				next.Today.ActiveUsers++
			}
		}

		switch {
		case next.Week.WeekStart > week:
		case next.Week.WeekStart != week:
			next.Week = WeekBucket{WeekStart: week}
			fallthrough
		default:
			next.Week.Calls += d.Week
			if d.Week > 0 {
				next.Week.ActiveUsers++
			}
		}

		return next
	}
}
