package model

type GenerateIDResponse struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}

type DecodeTimestampRequest struct {
	ID string `json:"id" validate:"required,uuid"`
}

type DecodeTimestampResponse struct {
	ID        string  `json:"id"`
	Version   int     `json:"version"`
	Timestamp *string `json:"timestamp"`
}

type TextRequest struct {
	Text *string `json:"text"`
}

type TextResponse struct {
	Text string `json:"text"`
}

type RecognizeCodeRequest struct {
	Text   string `json:"text"`
	Family string `json:"family"`
}

type RecognizeCodeResponse struct {
	Family string  `json:"family"`
	Code   *string `json:"code"`
	Valid  bool    `json:"valid"`
}

type JoinNamesRequest struct {
	Names []*string `json:"names" validate:"max=20"`
}

// AddressRequest uses the same keys as the address JSON it produces.
type AddressRequest struct {
	Address    *string    `json:"address"`
	City       *string    `json:"city"`
	PostalCode *string    `json:"postalCode"`
	Country    *string    `json:"country"`
	GPS        []*float64 `json:"gps" validate:"omitempty,max=3"`
	Type       *string    `json:"type"`
}

type DigestRequest struct {
	Text *string `json:"text" validate:"required"`
}

type DigestResponse struct {
	Base64 string `json:"base64"`
	UUID   string `json:"uuid"`
}

// VerifyDigestRequest checks text against either digest form. When both are
// given both must match.
type VerifyDigestRequest struct {
	Text   *string `json:"text" validate:"required"`
	Base64 string  `json:"base64,omitempty" validate:"required_without=UUID"`
	UUID   string  `json:"uuid,omitempty" validate:"omitempty,uuid"`
}

type VerifyDigestResponse struct {
	Valid bool `json:"valid"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Dates travel as YYYY-MM-DD.
type DateRangeRequest struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

type DateRangeResponse struct {
	Dates []string `json:"dates"`
	Count int      `json:"count"`
}

type MonthRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type MonthResponse struct {
	FirstDay string `json:"first_day"`
	LastDay  string `json:"last_day"`
	Days     int    `json:"days"`
}
