package fieldx

import (
	"encoding/json"

	"fieldnorm/pkg/sanitizer"
)

// Address is the JSON shape produced by ToAddress. Absent fields marshal as null.
type Address struct {
	Address    *string   `json:"address" bson:"address"`
	City       *string   `json:"city" bson:"city"`
	PostalCode *string   `json:"postalCode" bson:"postal_code"`
	Country    *string   `json:"country" bson:"country"`
	GPS        []float64 `json:"gps" bson:"gps"`
	Type       *string   `json:"type" bson:"type"`
}

// NewAddress collapses whitespace in every present text field and keeps gps
// only when its first two values are both present.
func NewAddress(street, city, postalCode, country *string, gps []*float64, kind *string) Address {
	return Address{
		Address:    collapsed(street),
		City:       collapsed(city),
		PostalCode: collapsed(postalCode),
		Country:    collapsed(country),
		GPS:        coordinates(gps),
		Type:       collapsed(kind),
	}
}

// ToAddress marshals NewAddress as a JSON object with the keys address,
// city, postalCode, country, gps and type.
func ToAddress(street, city, postalCode, country *string, gps []*float64, kind *string) ([]byte, error) {
	return json.Marshal(NewAddress(street, city, postalCode, country, gps, kind))
}

func collapsed(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitizer.CollapseWhitespace(s)
	return &v
}

func coordinates(gps []*float64) []float64 {
	if len(gps) < 2 || gps[0] == nil || gps[1] == nil {
		return nil
	}
	return []float64{*gps[0], *gps[1]}
}
