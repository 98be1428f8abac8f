package utils

import (
	"strconv"
	"strings"
)

const fileSizeStep = 1024

var fileSizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case unit, keeping one decimal below ten units.
func FormatFileSize(byteCount int64) string {
	if byteCount < fileSizeStep {
		return strconv.FormatInt(max(byteCount, 0), 10) + fileSizeUnits[0]
	}
	scaled := float64(byteCount)
	unitIndex := 0
	for scaled >= fileSizeStep && unitIndex < len(fileSizeUnits)-1 {
		scaled /= fileSizeStep
		unitIndex++
	}
	precision := 0
	if scaled < 10 {
		precision = 1
	}
	return strings.TrimSuffix(strconv.FormatFloat(scaled, 'f', precision, 64), ".0") + fileSizeUnits[unitIndex]
}
