package models

// Subscription is derived each run from the per-column recipient lists.
type Subscription struct {
	Email      string   `json:"email"`
	PlotTitles []string `json:"plotTitles"`
	Columns    []int    `json:"columns"`
	HTMLTable  string   `json:"htmlTable"`
}

type ChartAsset struct {
	Title       string
	ContentType string
	Image       []byte
}

type InlineImage struct {
	ContentID   string
	ContentType string
	Data        []byte
}

type Message struct {
	To           string
	Subject      string
	HTMLBody     string
	InlineImages []InlineImage
}
