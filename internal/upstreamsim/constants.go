package upstreamsim

// Generation constants.
const (
	DefaultProfessions = 6
	maxLeadsPerHour    = 4
	minSessionsPerDay  = 10
	sessionSpread      = 50
	basePrice          = 100
	pricePerID         = 10.5
	inactiveEvery      = 5
	legacyMinute       = 30
)

var professionNames = []string{
	"Psicólogo",
	"Nutricionista",
	"Fisioterapeuta",
	"Dentista",
	"Fonoaudiólogo",
	"Personal Trainer",
	"Terapeuta Ocupacional",
	"Médico",
}
