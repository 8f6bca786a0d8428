package models

import "time"

// AgeAt returns the age in whole years on the given day.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

func AgeBracketFor(birth, now time.Time) AgeBracket {
	switch age := AgeAt(birth, now); {
	case age < 12:
		return AgeBracketEnfant
	case age < 18:
		return AgeBracketAdo
	case age < 65:
		return AgeBracketAdulte
	default:
		return AgeBracketSenior
	}
}
