package models

type Specialite string
type Genre string
type AgeBracket string
type TalentStatus string
type Expression string

const (
	SpecialiteActeur    Specialite = "Acteur"
	SpecialiteMannequin Specialite = "Mannequin"
	SpecialiteVoixOff   Specialite = "Voix off"

	GenreHomme Genre = "Homme"
	GenreFemme Genre = "Femme"
	GenreAutre Genre = "Autre"

	AgeBracketEnfant AgeBracket = "Enfant"
	AgeBracketAdo    AgeBracket = "Ado"
	AgeBracketAdulte AgeBracket = "Adulte"
	AgeBracketSenior AgeBracket = "Senior"

	TalentStatusActif   TalentStatus = "Actif"
	TalentStatusEnPause TalentStatus = "En pause"

	ExpressionJoie      Expression = "Joie"
	ExpressionTristesse Expression = "Tristesse"
	ExpressionColere    Expression = "Colère"
	ExpressionSurprise  Expression = "Surprise"
	ExpressionNeutre    Expression = "Neutre"
)

func (s Specialite) Valid() bool {
	switch s {
	case SpecialiteActeur, SpecialiteMannequin, SpecialiteVoixOff:
		return true
	}
	return false
}

func (g Genre) Valid() bool {
	switch g {
	case GenreHomme, GenreFemme, GenreAutre:
		return true
	}
	return false
}

func (s TalentStatus) Valid() bool {
	return s == TalentStatusActif || s == TalentStatusEnPause
}

// Valid accepts the empty expression: photos may be unclassified.
func (e Expression) Valid() bool {
	switch e {
	case "", ExpressionJoie, ExpressionTristesse, ExpressionColere, ExpressionSurprise, ExpressionNeutre:
		return true
	}
	return false
}
