package models

// MSeedRequest is the body accepted by the seed trigger.
// Nil fields take their configured default.
type MSeedRequest struct {
	BatchStart *int  `json:"batchStart"`
	BatchSize  *int  `json:"batchSize"`
	ClearFirst *bool `json:"clearFirst"`
}

// MSymbolError reports a symbol that could not be seeded or served.
type MSymbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// MSeedSummary is the result of one seed batch.
// NextBatch is nil once the universe is exhausted; callers resubmit it as BatchStart.
type MSeedSummary struct {
	BatchStart  int            `json:"batchStart"`
	BatchEnd    int            `json:"batchEnd"`
	TotalStocks int            `json:"totalStocks"`
	Processed   int            `json:"processed"`
	Failed      int            `json:"failed"`
	TotalDays   int            `json:"totalDays"`
	NextBatch   *int           `json:"nextBatch"`
	Errors      []MSymbolError `json:"errors"`
	Cleared     bool           `json:"cleared,omitempty"`
	FinishedAt  int64          `json:"finishedAt"`
}
