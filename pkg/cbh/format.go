package cbh

import (
	"fmt"
	"strconv"
)

// PGNDate formats a game date as "YYYY.MM.DD", filling unknown fields with
// "????" and "??" per the PGN standard.
func PGNDate(year, month, day int) string {
	yy, mm, dd := "????", "??", "??"
	if year != 0 {
		yy = fmt.Sprintf("%04d", year)
	}
	if month != 0 {
		mm = fmt.Sprintf("%02d", month)
	}
	if day != 0 {
		dd = fmt.Sprintf("%02d", day)
	}
	return yy + "." + mm + "." + dd
}

// PGNRound formats the round as "R", or "R(S)" when the subround is set.
func PGNRound(round, subround int) string {
	if subround == 0 {
		return strconv.Itoa(round)
	}
	return fmt.Sprintf("%v(%v)", round, subround)
}
