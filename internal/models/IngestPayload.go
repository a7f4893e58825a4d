package models

import "net/url"

// IngestPayload is the flat key/value body sent by a sensor node. Values stay raw strings.
type IngestPayload struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	BadValues    string `json:"badValues"`
	MinTemp      string `json:"minTemp"`
	MeanTemp     string `json:"meanTemp"`
	MaxTemp      string `json:"maxTemp"`
	MinHumidity  string `json:"minHumidity"`
	MeanHumidity string `json:"meanHumidity"`
	MaxHumidity  string `json:"maxHumidity"`
}

func NewIngestPayload(values url.Values) *IngestPayload {
	return &IngestPayload{
		Name:         values.Get("name"),
		Date:         values.Get("date"),
		BadValues:    values.Get("badValues"),
		MinTemp:      values.Get("minTemp"),
		MeanTemp:     values.Get("meanTemp"),
		MaxTemp:      values.Get("maxTemp"),
		MinHumidity:  values.Get("minHumidity"),
		MeanHumidity: values.Get("meanHumidity"),
		MaxHumidity:  values.Get("maxHumidity"),
	}
}

func (p *IngestPayload) Temps() [3]string {
	return [3]string{p.MinTemp, p.MeanTemp, p.MaxTemp}
}

func (p *IngestPayload) Humids() [3]string {
	return [3]string{p.MinHumidity, p.MeanHumidity, p.MaxHumidity}
}
