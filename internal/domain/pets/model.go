package pets

import "time"

// Gender define el sexo de la mascota.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s)
	default:
		return GenderUnknown
	}
}

// Profile es el perfil de una mascota registrada.
// Invariante: AgeYears está definido si y solo si Birthday está definido.
type Profile struct {
	ID    string
	Label string

	Birthday *time.Time
	AgeYears *int
	Gender   Gender

	CreatedAt time.Time
	UpdatedAt time.Time
}
