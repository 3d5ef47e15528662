package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// force the timezone so that last-checked dates roll over at the ops team's
// midnight no matter where the runner is hosted
func Now() time.Time {
	return time.Now().In(Location)
}

// Today is the current date with the time stripped, in the pinned zone.
func Today() time.Time {
	now := Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, Location)
}
