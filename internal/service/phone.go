package service

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// normalizePhone returns the number in E.164. Numbers without a country code
// are read in the shop's default region.
func normalizePhone(raw string, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", invalidInput("phone: " + err.Error())
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", invalidInput("phone is not a valid number")
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
