package model

import (
	"time"

	"fieldnorm/pkg/fieldx"
)

const (
	SourceHTTP  = "http"
	SourceKafka = "kafka"
)

// Record is a raw inbound record. Every text field is optional and is
// normalized before it is stored.
type Record struct {
	ID          string     `json:"id,omitempty" validate:"omitempty,uuid"`
	FirstName   *string    `json:"first_name,omitempty" validate:"omitempty,max=200"`
	MiddleName  *string    `json:"middle_name,omitempty" validate:"omitempty,max=200"`
	LastName    *string    `json:"last_name,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=65536"`
	Code        *string    `json:"code,omitempty" validate:"omitempty,max=100"`
	CodeFamily  *string    `json:"code_family,omitempty" validate:"omitempty,code_family"`
	Street      *string    `json:"street,omitempty" validate:"omitempty,max=500"`
	City        *string    `json:"city,omitempty" validate:"omitempty,max=200"`
	PostalCode  *string    `json:"postal_code,omitempty" validate:"omitempty,max=50"`
	Country     *string    `json:"country,omitempty" validate:"omitempty,max=100"`
	AddressType *string    `json:"address_type,omitempty" validate:"omitempty,max=50"`
	GPS         []*float64 `json:"gps,omitempty" validate:"omitempty,max=3"`
	Tags        []string   `json:"tags,omitempty" validate:"omitempty,max=50,dive,max=100"`
	Active      *string    `json:"active,omitempty" validate:"omitempty,max=20"`
	Quantity    *string    `json:"quantity,omitempty" validate:"omitempty,max=40"`
}

// HasAddress reports whether any address field is present.
func (r *Record) HasAddress() bool {
	return r.Street != nil || r.City != nil || r.PostalCode != nil ||
		r.Country != nil || r.AddressType != nil || len(r.GPS) > 0
}

// NormalizedRecord is the stored form of a Record. ID is a version 7 UUID
// and CreatedAt is the instant embedded in it.
type NormalizedRecord struct {
	ID          string          `json:"id" bson:"_id"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	Source      string          `json:"source" bson:"source"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`
	Code        *string         `json:"code" bson:"code"`
	CodeFamily  string          `json:"code_family,omitempty" bson:"code_family,omitempty"`
	Address     *fieldx.Address `json:"address" bson:"address"`
	Tags        []string        `json:"tags" bson:"tags"`
	Active      bool            `json:"active" bson:"active"`
	Quantity    int64           `json:"quantity" bson:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}
