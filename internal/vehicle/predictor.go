package vehicle

// Identification is a make/model guess.
type Identification struct {
	Make  string `json:"make"`
	Model string `json:"model"`
}

type rule struct {
	matches func(CarFeatures) bool
	id      Identification
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		matches: func(f CarFeatures) bool { return f.BodyProportions > 2.5 && f.HeadlightCount >= 4 },
		id:      Identification{Make: "Toyota", Model: "Camry"},
	},
	{
		matches: func(f CarFeatures) bool { return f.BodyProportions > 2.0 && f.HeadlightCount >= 3 },
		id:      Identification{Make: "Honda", Model: "Civic"},
	},
	{
		matches: func(f CarFeatures) bool { return f.BodyProportions > 1.8 },
		id:      Identification{Make: "Ford", Model: "Focus"},
	},
}

var fallback = Identification{Make: "Chevrolet", Model: "Malibu"}

// Predict maps features to a make and model. It never fails: features that
// match no rule fall through to the default identification.
func Predict(f CarFeatures) Identification {
	for _, r := range rules {
		if r.matches(f) {
			return r.id
		}
	}
	return fallback
}
