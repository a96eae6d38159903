package domain

import (
	"fmt"
	"strings"
)

// Digits strips everything but 0-9 from s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// FormatCPF renders an 11-digit CPF as 000.000.000-00. Other lengths are returned as digits.
func FormatCPF(s string) string {
	d := Digits(s)
	if len(d) != 11 {
		return d
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[:3], d[3:6], d[6:9], d[9:11])
}

// FormatPhone renders an 11-digit mobile as (00) 00000-0000 and a 10-digit
// landline as (00) 0000-0000. Other lengths are returned as digits.
func FormatPhone(s string) string {
	d := Digits(s)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:11])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:10])
	}
	return d
}
