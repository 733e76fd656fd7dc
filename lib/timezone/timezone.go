package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/London")
	if err != nil {
		panic(err)
	}
}

// force timezone to be London no matter where the process runs,
// sitting days and edition dates are London dates so using the
// host zone shifts <time.Time>.Year()/Month()/Day()/Weekday()
func Now() time.Time {
	return time.Now().In(Location)
}

// midnight of the given calendar date in London
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, Location)
}
