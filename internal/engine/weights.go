package engine

import "strings"

// referenceWeight is the adult weight range midpoint per breed and sex, in kg.
type referenceWeight struct {
	Male   float64
	Female float64
}

// breedWeights is a static lookup of adult reference weights.
var breedWeights = map[string]referenceWeight{
	"holstein":  {Male: 900, Female: 680},
	"jersey":    {Male: 650, Female: 450},
	"angus":     {Male: 850, Female: 550},
	"hereford":  {Male: 800, Female: 540},
	"brahman":   {Male: 900, Female: 600},
	"charolais": {Male: 900, Female: 700},
	"simmental": {Male: 880, Female: 650},
	"gyr":       {Male: 750, Female: 500},
}

// fallback for breeds not in the table.
const (
	fallbackMaleWeight   = 750
	fallbackFemaleWeight = 500
)

// referenceWeightFor returns the expected adult weight for a breed and sex.
func referenceWeightFor(breed, sex string) float64 {
	ref, ok := breedWeights[strings.ToLower(strings.TrimSpace(breed))]
	if !ok {
		if sex == "male" {
			return fallbackMaleWeight
		}
		return fallbackFemaleWeight
	}
	if sex == "male" {
		return ref.Male
	}
	return ref.Female
}
