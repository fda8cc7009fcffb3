package models

// MPriceHistoryRequest is the body accepted by the cache reader.
type MPriceHistoryRequest struct {
	Symbols []string `json:"symbols"`
	Range   string   `json:"range"`
}

// MPriceHistoryResponse groups cached bars by symbol.
// Every requested symbol appears exactly once, in Data or in Errors.
type MPriceHistoryResponse struct {
	Data      map[string][]MBarPoint `json:"data"`
	Errors    []MSymbolError         `json:"errors"`
	Range     string                 `json:"range"`
	StartDate string                 `json:"startDate"`
	Source    string                 `json:"source"`
}
