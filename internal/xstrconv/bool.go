package xstrconv

import (
	"strconv"
	"strings"
)

// ParseBool is strconv.ParseBool extended with the values HTML form checkboxes
// and query flags commonly send.
func ParseBool(str string) (bool, error) {
	switch strings.ToLower(str) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	default:
		return strconv.ParseBool(str)
	}
}
