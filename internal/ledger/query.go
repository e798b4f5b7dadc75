package ledger

import (
	"net/url"
	"strconv"
	"time"
)

// PeriodFromQuery parses mode/year/month query parameters into a validated
// Period. Absent parameters default to the current UTC month. Values are
// user-controlled, so everything is validated before use.
func PeriodFromQuery(q url.Values) (Period, error) {
	now := time.Now().UTC()
	period := Period{Mode: PeriodMonthly, Year: now.Year(), Month: now.Month()}

	if mode := q.Get("mode"); mode != "" {
		period.Mode = PeriodMode(mode)
	}
	if year := q.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return Period{}, Errorf(ErrValidation, "year %q is not numeric", year)
		}
		period.Year = y
	}
	if month := q.Get("month"); month != "" {
		m, err := strconv.Atoi(month)
		if err != nil {
			return Period{}, Errorf(ErrValidation, "month %q is not numeric", month)
		}
		period.Month = time.Month(m)
	}
	if period.Mode == PeriodYearly {
		period.Month = 0
	}
	if err := period.Validate(); err != nil {
		return Period{}, err
	}
	return period, nil
}
