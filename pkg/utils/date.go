package utils

import (
	"fmt"
	"time"
)

const vnpDateLayout = "20060102150405"

// FormatVNPayDateTime renders a timestamp in the gateway's yyyyMMddHHmmss
// format, expressed in Vietnam time.
func FormatVNPayDateTime(t time.Time) string {
	location := time.FixedZone("ICT", 7*60*60)
	return t.In(location).Format(vnpDateLayout)
}

// ParseVNPayDateTime parses the gateway's yyyyMMddHHmmss timestamps, which are
// sent in Vietnam time without a zone designator.
func ParseVNPayDateTime(value string) (time.Time, error) {
	location := time.FixedZone("ICT", 7*60*60)
	t, err := time.ParseInLocation(vnpDateLayout, value, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing gateway timestamp %q: %v", value, err)
	}

	return t, nil
}

func ConvertDateTimeToHumanReadableFormat(datetime int64) string {
	t := time.Unix(datetime, 0)
	location := time.FixedZone("ICT", 7*60*60)
	return t.In(location).Format("02 January 2006, 15:04 ICT")
}
