package export

import (
	"fmt"
	"strconv"

	"route-planning-report/internal/models"
)

// DefaultLanguage is the language of the planning review sheet
const DefaultLanguage = "nl"

var labels = map[string][]string{
	"nl": {"location", "routeId", "voertuig", "chauffeur", "capaciteit", "stops",
		"afstand_km", "belading", "aankomst", "vertrek", "tijdsduur", "kosten"},
	"en": {"location", "routeId", "vehicle", "driver", "capacity", "stops",
		"distance_km", "fill_rate", "arrival", "departure", "duration", "cost"},
}

// Labels returns the column headers for a language
func Labels(lang string) ([]string, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	l, ok := labels[lang]
	if !ok {
		return nil, fmt.Errorf("unknown language %q", lang)
	}
	return append([]string(nil), l...), nil
}

// Languages lists the supported label languages
func Languages() []string {
	return []string{"nl", "en"}
}

// Row renders a summary in column order
func Row(s models.RouteSummary) []string {
	return []string{
		s.Location,
		strconv.FormatInt(s.RouteID, 10),
		s.Vehicle,
		s.Driver,
		strconv.FormatFloat(s.Capacity, 'f', -1, 64),
		strconv.Itoa(s.Stops),
		strconv.FormatInt(s.DistanceKm, 10),
		strconv.FormatFloat(s.FillRatePercent, 'f', 1, 64),
		s.Arrival,
		s.Departure,
		s.Duration,
		strconv.FormatFloat(s.Cost, 'f', 2, 64),
	}
}
