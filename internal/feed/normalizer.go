package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/theodesde/retrohunt-app/internal/domain"
	"github.com/theodesde/retrohunt-app/internal/platform/textutil"
)

// Header names as the source spreadsheet publishes them. Latitude and
// Longitude are capitalised in the source; everything else is lowercase.
const (
	fieldName        = "name"
	fieldCity        = "city"
	fieldAddress     = "address"
	fieldLatitude    = "Latitude"
	fieldLongitude   = "Longitude"
	fieldSpecialty   = "specialty"
	fieldTags        = "tags"
	fieldDescription = "description"
	fieldVerified    = "verified"
	fieldHallOfFame  = "hallOfFame"
	fieldPublished   = "isPublished"
	fieldCountry     = "country"
)

// Normalize turns raw feed rows into validated shop records. A row survives
// only when it carries a name, both coordinates parse to finite numbers, and
// the publication flag equals "true" case-insensitively. Ids are assigned
// 1..N over the surviving rows; a later pass reassigns them from scratch.
func Normalize(rows []Row, homeCountry string) []domain.ShopRecord {
	homeCountry = strings.ToUpper(strings.TrimSpace(homeCountry))

	records := make([]domain.ShopRecord, 0, len(rows))
	for _, raw := range rows {
		row := textutil.NormalizeStringMap(map[string]string(raw))
		if row == nil {
			continue
		}
		if row[fieldName] == "" {
			continue
		}
		if !textutil.EqualsTrue(row[fieldPublished]) {
			continue
		}

		lat, ok := ParseCoordinate(row[fieldLatitude])
		if !ok {
			continue
		}
		lng, ok := ParseCoordinate(row[fieldLongitude])
		if !ok {
			continue
		}

		country := strings.ToUpper(row[fieldCountry])
		if country == "" {
			country = homeCountry
		}

		records = append(records, domain.ShopRecord{
			ID:          len(records) + 1,
			Name:        row[fieldName],
			City:        row[fieldCity],
			Address:     row[fieldAddress],
			Specialty:   row[fieldSpecialty],
			Description: row[fieldDescription],
			Country:     country,
			Lat:         lat,
			Lng:         lng,
			Tags:        textutil.SplitCSV(row[fieldTags]),
			Verified:    textutil.EqualsTrue(row[fieldVerified]),
			HallOfFame:  textutil.EqualsTrue(row[fieldHallOfFame]),
			Published:   true,
		})
	}
	return records
}

// ParseCoordinate parses a locale-formatted decimal degree value, accepting
// either comma or dot as the decimal separator. Missing or non-finite values
// report false.
func ParseCoordinate(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
