package controller

import (
	"fmt"
	"time"
)

// routeListing is the body of the welcome page.
const routeListing = "Available Routes:\n" +
	"/api/v1.0/precipitation\n" +
	"/api/v1.0/stations\n" +
	"/api/v1.0/tobs\n" +
	"/api/v1.0/start\n" +
	"/api/v1.0/start/end\n"

// parseDate accepts a calendar date in the dataset's YYYY-MM-DD form.
func parseDate(name, s string) (string, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("invalid '%s' %q (expected YYYY-MM-DD)", name, s)
	}
	return t.Format(time.DateOnly), nil
}

func parseDateRange(startStr, endStr string) (start string, end string, err error) {
	start, err = parseDate("start", startStr)
	if err != nil {
		return "", "", err
	}
	end, err = parseDate("end", endStr)
	if err != nil {
		return "", "", err
	}
	if start > end {
		return "", "", fmt.Errorf("'start' %s must be <= 'end' %s", start, end)
	}
	return start, end, nil
}
